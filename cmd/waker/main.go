// Waker — a voice-assistant alarm clock engine for the terminal.
//
// Usage:
//
//	waker [-verbose] [-quiet] [-no-display]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/waker/internal/audio"
	"github.com/hammamikhairi/waker/internal/clock"
	"github.com/hammamikhairi/waker/internal/conversation"
	"github.com/hammamikhairi/waker/internal/display"
	"github.com/hammamikhairi/waker/internal/domain"
	"github.com/hammamikhairi/waker/internal/logger"
	"github.com/hammamikhairi/waker/internal/storage"
	"github.com/hammamikhairi/waker/internal/timer"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".waker-logs/waker.log", "file to write logs to (use \"stderr\" to log to console)")
	soundsDir := flag.String("sounds", "sounds", "directory containing alarm sound files")
	homeZone := flag.String("home-tz", clock.DefaultHomeZone, "IANA timezone the wall clock runs in")
	noDisplay := flag.Bool("no-display", false, "run without the terminal display peripheral")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package to the same output so
	// third-party libs don't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	// Set up context — cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies.
	store := storage.NewAlarmStore(log)

	resolver, err := clock.NewResolver(*homeZone, os.Getenv(clock.EnvAPIKey), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	player := audio.NewPlayer(log)

	var ring *timer.RingController
	ui := display.NewUI(func() domain.RingState {
		if ring == nil {
			return domain.RingState{}
		}
		return ring.State()
	})

	var peripheral domain.DisplayPeripheral = ui
	if *noDisplay {
		peripheral = display.NewNoOp(log)
	}

	notifier := conversation.NewUINotifier(log, ui.Printf)
	ring = timer.NewRingController(store, player, peripheral, log,
		timer.WithSoundDir(*soundsDir),
		timer.WithRingClock(domain.ClockFunc(resolver.Now)),
		timer.WithNotifier(notifier),
	)
	eval := timer.NewEvaluator(store, resolver, ring, log)
	clockLoop := timer.NewClockLoop(peripheral, resolver, log)
	parser := conversation.NewParser(conversation.NameSourceFunc(func() []string {
		var names []string
		for _, a := range store.List() {
			names = append(names, a.Name)
		}
		return names
	}), log)

	// Run the UI on the main goroutine; everything else is background.
	go func() {
		ui.WaitReady()
		ui.Println(display.RenderBanner())
		ui.PrintChat(fmt.Sprintf("Xin chào! Wall clock: %s. Type `help` for commands.", resolver.HomeZone()))

		// Host tick: drives alarm evaluation at 1 Hz.
		runner := timer.NewRunner(eval, time.Second, log)
		runner.Start(ctx)
		defer runner.Stop()

		repl(ctx, ui, store, resolver, ring, clockLoop, parser, log)
	}()

	if err := ui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "display error: %v\n", err)
	}
	cancel()
	clockLoop.Stop()
	ring.Stop()
	log.Info("waker shut down")
}

// repl consumes user input lines until the UI quits.
func repl(
	ctx context.Context,
	ui *display.UI,
	store *storage.AlarmStore,
	resolver *clock.Resolver,
	ring *timer.RingController,
	clockLoop *timer.ClockLoop,
	parser *conversation.Parser,
	log *logger.Logger,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ui.QuitChan():
			return
		case line := <-ui.InputChan():
			handle(line, ui, store, resolver, ring, clockLoop, parser, log)
		}
	}
}

func handle(
	line string,
	ui *display.UI,
	store *storage.AlarmStore,
	resolver *clock.Resolver,
	ring *timer.RingController,
	clockLoop *timer.ClockLoop,
	parser *conversation.Parser,
	log *logger.Logger,
) {
	trimmed := strings.TrimSpace(line)
	lower := strings.ToLower(trimmed)
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "help", "h", "?":
		printHelp(ui)

	case "list", "ls":
		listAlarms(ui, store, ring)

	case "add":
		addAlarm(strings.TrimSpace(trimmed[len(fields[0]):]), ui, store, resolver, parser)

	case "del", "delete", "rm":
		if len(fields) < 2 {
			ui.PrintHint("usage: del <number from `list`>")
			return
		}
		deleteAlarm(fields[1], ui, store, ring)

	case "stop":
		if ring.Stop() {
			ui.PrintInfo("Alarm stopped.")
		} else {
			ui.PrintHint("Nothing is ringing.")
		}

	case "snooze":
		st := ring.State()
		if !st.Ringing {
			ui.PrintHint("Nothing is ringing.")
			return
		}
		a := store.Get(st.AlarmID)
		if a != nil && ring.Snooze(st.AlarmID) {
			ui.PrintInfo(fmt.Sprintf("Snoozed for %d minutes.", a.SnoozeMinutes))
		} else {
			ui.PrintUrgent("Snooze rejected (disabled or limit reached).")
		}

	case "vol", "volume":
		if len(fields) < 2 || (fields[1] != "up" && fields[1] != "down") {
			ui.PrintHint("usage: vol up | vol down")
			return
		}
		v := ring.AdjustVolume(fields[1] == "up")
		ui.PrintInfo(fmt.Sprintf("Volume: %.0f%%", v*100))

	case "time":
		if len(fields) < 2 {
			ui.PrintInfo("Local: " + resolver.Now().Format("15:04:05, 02/01/2006"))
			return
		}
		showTime(strings.TrimSpace(trimmed[len(fields[0]):]), ui, resolver, log)

	case "clock":
		if len(fields) < 2 || (fields[1] != "on" && fields[1] != "off") {
			ui.PrintHint("usage: clock on | clock off")
			return
		}
		if fields[1] == "on" {
			clockLoop.Start()
			ui.PrintInfo("Clock display on.")
		} else {
			clockLoop.Stop()
			ui.PrintInfo("Clock display off.")
		}

	case "quit", "exit", "q":
		ui.Quit()

	default:
		// Free text: stop phrases first, then alarm-setting speech.
		if reply, ok := ring.MatchStopCommand(trimmed); ok {
			ui.PrintChat(reply)
			return
		}
		addAlarm(trimmed, ui, store, resolver, parser)
	}
}

func printHelp(ui *display.UI) {
	ui.PrintInfo("Commands:")
	ui.PrintHint("  list                 show alarms")
	ui.PrintHint("  add <speech>         e.g. `add đặt báo thức lúc 7 giờ 30 sáng ngày mai`")
	ui.PrintHint("  del <n>              delete alarm n")
	ui.PrintHint("  stop / snooze        control a ringing alarm")
	ui.PrintHint("  vol up|down          adjust alarm volume")
	ui.PrintHint("  time [location]      current time somewhere, e.g. `time tokyo`")
	ui.PrintHint("  clock on|off         push a live clock to the display")
	ui.PrintHint("  quit                 exit")
}

func listAlarms(ui *display.UI, store *storage.AlarmStore, ring *timer.RingController) {
	alarms := store.List()
	if len(alarms) == 0 {
		ui.PrintHint("No alarms. Try `add đặt báo thức lúc 7 giờ sáng`.")
		return
	}
	st := ring.State()
	for i, a := range alarms {
		mark := " "
		if st.Ringing && st.AlarmID == a.ID {
			mark = "⏰"
		}
		state := "on"
		if !a.Active {
			state = "off"
		}
		when := "daily"
		switch {
		case a.IsRecurring():
			when = weekdayList(a.RepeatDays)
		case a.Date != nil:
			when = a.Date.Format("02/01/2006")
		}
		ui.PrintInfo(fmt.Sprintf("%s %d. %s  %-18s %s  [%s, %s]", mark, i+1, a.TimeLabel(), a.Name, when, a.Sound, state))
	}
}

func addAlarm(utterance string, ui *display.UI, store *storage.AlarmStore, resolver *clock.Resolver, parser *conversation.Parser) {
	req, err := parser.ParseAlarmCommand(utterance, resolver.Now())
	if err != nil {
		ui.PrintUrgent(fmt.Sprintf("Sorry: %v", err))
		return
	}
	store.Add(&domain.Alarm{
		Hour:          req.Hour,
		Minute:        req.Minute,
		Date:          req.Date,
		Name:          req.Name,
		Sound:         domain.SoundNormal,
		SnoozeEnabled: true,
		SnoozeMinutes: 5,
		Active:        true,
	})
	when := "every day"
	if req.Date != nil {
		when = req.Date.Format("02/01/2006")
	}
	ui.PrintChat(fmt.Sprintf("Đã đặt báo thức %q lúc %02d:%02d (%s).", req.Name, req.Hour, req.Minute, when))
}

func deleteAlarm(arg string, ui *display.UI, store *storage.AlarmStore, ring *timer.RingController) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		ui.PrintHint("usage: del <number from `list`>")
		return
	}
	alarms := store.List()
	if n > len(alarms) {
		ui.PrintUrgent(fmt.Sprintf("No alarm %d.", n))
		return
	}
	target := alarms[n-1]

	// A ringing alarm is silenced before it goes away.
	if st := ring.State(); st.Ringing && st.AlarmID == target.ID {
		ring.Stop()
	}
	store.Delete(target.ID)
	ui.PrintInfo(fmt.Sprintf("Deleted %q.", target.Name))
}

func showTime(location string, ui *display.UI, resolver *clock.Resolver, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := resolver.Resolve(ctx, location)
	if err != nil {
		log.Warn("time lookup for %q: %v", location, err)
		ui.PrintUrgent(fmt.Sprintf("Couldn't get the time for %q: %v", location, err))
		return
	}
	ui.PrintChat(fmt.Sprintf("%s: %s (%s, via %s)",
		location, res.Time.Format("15:04:05, 02/01/2006"), res.Zone, res.Source))
}

func weekdayList(days []time.Weekday) string {
	short := make([]string, len(days))
	for i, d := range days {
		short[i] = d.String()[:3]
	}
	return strings.Join(short, ",")
}
