package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"pidroid/utils"
	"syscall"
)

// Run opens the gateway connection, starts the scheduler and blocks until
// the process receives a termination signal.
func (b *Bot) Run() {
	if err := b.Session.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	b.scheduler.Start()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	if err := utils.LogInfo(b.GetConfig().LogWebhookURL, "System", "Startup", "Bot has started successfully."); err != nil {
		log.Printf("Error sending startup notice: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}

// Close stops the scheduler and closes the gateway session.
func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	if err := utils.LogInfo(b.GetConfig().LogWebhookURL, "System", "Shutdown", "Bot is shutting down."); err != nil {
		log.Printf("Error sending shutdown notice: %v", err)
	}
	b.Session.Close()
}
