package bot

import (
	"fmt"
	"log"
	"pidroid/scanner"
	"pidroid/utils"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Scheduler manages the bot's background tasks: the punishment
// reconciliation loop and the system status heartbeat.
type Scheduler struct {
	bot  *Bot
	done chan struct{}
	wg   sync.WaitGroup
}

func NewScheduler(bot *Bot) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.runReconciliation()
	go s.runHeartbeat()
}

// Stop terminates all scheduled tasks gracefully. In-flight ticks run to
// completion before Stop returns.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

// runReconciliation drives the expiry sweep on a fixed interval. Ticks never
// overlap: a slow sweep delays the next one instead of running alongside it.
func (s *Scheduler) runReconciliation() {
	defer s.wg.Done()

	reconciler := scanner.NewReconciler(s.bot.GetDB(), s.bot.GetActions())
	ticker := time.NewTicker(s.bot.GetConfig().ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			reconciler.Tick(now)
		}
	}
}

// runHeartbeat periodically reports process health to the log channel.
func (s *Scheduler) runHeartbeat() {
	defer s.wg.Done()

	started := time.Now()
	ticker := time.NewTicker(s.bot.GetConfig().HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.reportStatus(started)
		}
	}
}

func (s *Scheduler) reportStatus(started time.Time) {
	details := fmt.Sprintf("Uptime: %s | Goroutines: %d", time.Since(started).Round(time.Second), runtime.NumGoroutine())

	if vm, err := mem.VirtualMemory(); err == nil {
		details += fmt.Sprintf(" | Memory: %.1f%%", vm.UsedPercent)
	}
	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		details += fmt.Sprintf(" | CPU: %.1f%%", percentages[0])
	}

	log.Printf("Heartbeat: %s", details)
	if err := utils.LogInfo(s.bot.GetConfig().LogWebhookURL, "Scheduler", "Heartbeat", details); err != nil {
		log.Printf("Error sending heartbeat to log webhook: %v", err)
	}
}
