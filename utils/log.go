package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

type webhookEmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type webhookEmbed struct {
	Title  string              `json:"title"`
	Color  int                 `json:"color"`
	Fields []webhookEmbedField `json:"fields"`
}

type webhookPayload struct {
	Embeds []webhookEmbed `json:"embeds"`
}

func levelColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

func sendLog(webhookURL string, level LogLevel, component, operation, details string) error {
	if webhookURL == "" {
		return nil
	}

	payload := webhookPayload{
		Embeds: []webhookEmbed{{
			Title: string(level) + " Log",
			Color: levelColor(level),
			Fields: []webhookEmbedField{
				{Name: "Component", Value: component},
				{Name: "Operation", Value: operation},
				{Name: "Details", Value: details},
			},
		}},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to send log to discord, status: %s, body: %s", resp.Status, string(body))
	}
	return nil
}

func LogInfo(webhookURL, component, operation, details string) error {
	return sendLog(webhookURL, Info, component, operation, details)
}

func LogWarn(webhookURL, component, operation, details string) error {
	return sendLog(webhookURL, Warn, component, operation, details)
}

func LogError(webhookURL, component, operation, details string) error {
	return sendLog(webhookURL, Error, component, operation, details)
}
