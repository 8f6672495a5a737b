// Command edgertd is the demo host program for the edgert runtime core:
// it loads a node's static thread table from TOML, wires up the
// brake-by-wire demonstrator runnables, and drives the engine lifecycle
// spec.md §4.4 defines (init_runnables → create_threads → run →
// kill_threads → join_threads → deinit_runnables → cleanup).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/edgert-io/edgert"
	"github.com/edgert-io/edgert/examples/brakedemo"
	"github.com/edgert-io/edgert/internal/channel"
	"github.com/edgert-io/edgert/internal/config"
	"github.com/edgert-io/edgert/internal/constants"
	"github.com/edgert-io/edgert/internal/label"
	"github.com/edgert-io/edgert/internal/logging"
	"github.com/edgert-io/edgert/internal/task"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := "edgert.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	logger := logging.NewLogger(&logging.Config{Level: logging.LevelInfo, Component: "edgertd"})
	logging.SetDefault(logger)

	if _, err := maxprocs.Set(maxprocs.Logger(logger.Infof)); err != nil {
		logger.Warn("failed to set GOMAXPROCS from cgroup, continuing with runtime default", "error", err)
	}
	if _, err := memlimit.SetGoMemLimitWithOpts(memlimit.WithLogger(slog.Default())); err != nil {
		logger.Warn("failed to set GOMEMLIMIT from cgroup, continuing with runtime default", "error", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load configuration", "path", configPath, "error", err)
		return 1
	}

	eng := edgert.New(logger)

	for _, tc := range cfg.Threads {
		periodNs := tc.PeriodMs * int64(time.Millisecond)
		deadlineNs := tc.DeadlineMs * int64(time.Millisecond)
		offsetNs := tc.OffsetUs * int64(time.Microsecond)
		if err := eng.AddThread(tc.Name, periodNs, deadlineNs, offsetNs, tc.Priority, tc.CoreMask, tc.Partition); err != nil {
			logger.Error("failed to register thread", "name", tc.Name, "error", err)
			return 1
		}
	}

	if err := wireBrakeDemo(eng, cfg); err != nil {
		logger.Error("failed to wire demonstrator runnables", "error", err)
		return 1
	}

	if err := eng.InitRunnables(); err != nil {
		logger.Error("failed to init runnables", "error", err)
		return 1
	}

	eng.CreateThreads()
	logger.Info("node started", "node_id", cfg.NodeID, "threads", len(cfg.Threads))

	checkThreadWarmup(eng, logger)

	installStackDumpHandler(logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var experimentTimer <-chan time.Time
	if cfg.ExperimentMs > 0 {
		experimentTimer = time.After(time.Duration(cfg.ExperimentMs) * time.Millisecond)
	}

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case <-experimentTimer:
		logger.Info("experiment runtime elapsed")
	}

	eng.KillThreads()
	eng.JoinThreads()

	if err := eng.DeinitRunnables(); err != nil {
		logger.Error("runnable deinit reported errors", "error", err)
	}
	if err := eng.Cleanup(); err != nil {
		logger.Error("channel cleanup reported errors", "error", err)
	}

	for _, m := range eng.Metrics() {
		logger.Info("thread statistics", "thread", m.Name, "jobs", m.JobID, "mean_ns", m.MeanNs(), "deadline_misses", m.DeadlineMisses)
	}

	logger.Info("node stopped cleanly")
	return 0
}

// wireBrakeDemo binds the brakedemo sensor/actuator pair to any
// registered thread whose runnable name matches, per the label hand-off
// and channel-traffic scenario spec.md §8 scenario 2 describes. Threads
// naming a runnable this host does not recognize are left unbound and
// run empty jobs (spec.md §4.4 tie-breaks).
//
// The actuator is the client side of "brake_cmd": it only ever Sends a
// release command, matching spec.md §4.3's server-receives/client-sends
// table and the role enforcement internal/channel now applies. The
// server side stands in for a remote peer node and is drained by a
// background goroutine for the life of this process.
func wireBrakeDemo(e *edgert.Engine, cfg *config.NodeConfig) error {
	var labelID label.ID
	var haveLabel bool
	var cmdChannel *channel.Channel

	for _, tc := range cfg.Threads {
		switch tc.Runnable {
		case "wheel_speed_sensor":
			if !haveLabel {
				id, err := e.RegisterLabel("wheel_speed_fl", 4)
				if err != nil {
					return err
				}
				labelID, haveLabel = id, true
			}
			buf := make([]byte, 4)
			spec := &task.Spec{
				Runnable:       brakedemo.NewWheelSpeedSensor(buf),
				OutputLabelIDs: []label.ID{labelID},
				OutputBuffers:  [][]byte{buf},
			}
			if err := e.RegisterRunnable(tc.Name, spec); err != nil {
				return err
			}
		case "brake_actuator":
			if !haveLabel {
				id, err := e.RegisterLabel("wheel_speed_fl", 4)
				if err != nil {
					return err
				}
				labelID, haveLabel = id, true
			}
			if cmdChannel == nil {
				srv, err := e.CreateChannel("brake_cmd", 64, 4)
				if err != nil {
					return err
				}
				cli, err := e.ConnectChannel("brake_cmd", 64)
				if err != nil {
					return err
				}
				go drainBrakeCmdPeer(srv)
				cmdChannel = cli
			}
			buf := make([]byte, 4)
			spec := &task.Spec{
				Runnable:      brakedemo.NewBrakeActuator(buf, cmdChannel),
				InputLabelIDs: []label.ID{labelID},
				InputBuffers:  [][]byte{buf},
			}
			if err := e.RegisterRunnable(tc.Name, spec); err != nil {
				return err
			}
		}
	}
	return nil
}

// drainBrakeCmdPeer stands in for the remote node that would normally
// hold the server side of "brake_cmd". It blocks on Receive until the
// channel breaks (on engine Cleanup), discarding each release command.
func drainBrakeCmdPeer(srv *channel.Channel) {
	buf := make([]byte, 64)
	for {
		if _, err := srv.Receive(buf); err != nil {
			return
		}
	}
}

// checkThreadWarmup waits constants.SchedWarmup after threads are
// created, then flags any thread that still hasn't completed a single
// job — usually a sign the scheduling parameters requested (priority,
// affinity, or an offset longer than the warmup window) need a second
// look before trusting this run's statistics.
func checkThreadWarmup(eng *edgert.Engine, logger *logging.Logger) {
	time.Sleep(constants.SchedWarmup)
	for _, th := range eng.Threads() {
		if th.CurrentJobID() == 0 {
			logger.Warn("thread has not completed its first activation yet", "thread", th.Name)
		}
	}
}

func installStackDumpHandler(logger *logging.Logger) {
	stackDumpCh := make(chan os.Signal, 1)
	signal.Notify(stackDumpCh, syscall.SIGUSR1)
	go func() {
		for range stackDumpCh {
			buf := make([]byte, 1<<20)
			n := runtime.Stack(buf, true)
			fmt.Fprintf(os.Stderr, "=== GOROUTINE STACK DUMP ===\n%s\n", buf[:n])
			pprof.Lookup("goroutine").WriteTo(os.Stderr, 2)
			logger.Info("wrote goroutine stack dump to stderr")
		}
	}()
}
