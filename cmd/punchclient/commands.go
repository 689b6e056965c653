package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/config"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/offline"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/geo"
	"github.com/spf13/cobra"
)

// device bundles what every subcommand needs; close releases the queue file.
type device struct {
	cfg    *config.ClientConfig
	store  *offline.BoltStore
	client *offline.Client
}

func openDevice() (*device, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	store, err := offline.OpenBoltStore(cfg.QueuePath)
	if err != nil {
		return nil, err
	}
	return &device{
		cfg:    cfg,
		store:  store,
		client: offline.NewClient(cfg.APIURL, cfg.Token, cfg.HTTPTimeout),
	}, nil
}

func (d *device) close() {
	if err := d.store.Close(); err != nil {
		slog.Warn("Failed to close queue", "error", err)
	}
}

func newPunchCmd() *cobra.Command {
	var (
		punchType     string
		lat, lon      float64
		noLocation    bool
		kioskToken    string
		justification string
	)

	cmd := &cobra.Command{
		Use:   "punch",
		Short: "Submit a punch, saving it locally when the server is unreachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDevice()
			if err != nil {
				return err
			}
			defer d.close()

			var locator offline.FixedLocator
			if !noLocation {
				locator.Point = &geo.Coordinates{Lat: lat, Lon: lon}
			}
			puncher := offline.NewPuncher(d.client, d.store, d.store, locator, d.cfg.Cooldown, d.cfg.LocationTimeout)

			attempt := offline.Attempt{
				Type:          timeentry.Type(punchType),
				KioskToken:    kioskToken,
				Justification: justification,
			}
			outcome, err := puncher.Punch(cmd.Context(), attempt)
			if errors.Is(err, timeentry.ErrJustificationRequired) && justification == "" {
				attempt.Justification = promptJustification(cmd)
				if attempt.Justification == "" {
					return err
				}
				outcome, err = puncher.Punch(cmd.Context(), attempt)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, outcome.Message)
			if outcome.Entry != nil {
				fmt.Fprintf(out, "%s at %s (%s, %s)\n",
					outcome.Entry.Type,
					outcome.Entry.Timestamp.Local().Format(time.DateTime),
					outcome.Entry.LocationName,
					outcome.Entry.Status,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&punchType, "type", "t", string(timeentry.TypeClockIn), "Punch type: ClockIn, BreakStart, BreakEnd or ClockOut")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the device")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude of the device")
	cmd.Flags().BoolVar(&noLocation, "no-location", false, "Submit without a location")
	cmd.Flags().StringVar(&kioskToken, "kiosk-token", "", "Kiosk token when punching from a registered kiosk")
	cmd.Flags().StringVarP(&justification, "justification", "j", "", "Justification for a late clock-in")
	return cmd
}

// promptJustification asks on the terminal; an empty answer cancels the punch.
func promptJustification(cmd *cobra.Command) string {
	fmt.Fprint(cmd.OutOrStdout(), "Late clock-in. Enter a justification (empty to cancel): ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect punches waiting to be sent",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List queued punches in replay order",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDevice()
			if err != nil {
				return err
			}
			defer d.close()

			punches, err := d.store.PeekAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(punches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LOCAL ID\tTYPE\tCAPTURED AT\tATTEMPTS\tLAST ERROR")
			for _, p := range punches {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					p.LocalID, p.Type, p.CapturedAt.Local().Format(time.DateTime), p.Attempts, p.LastError)
			}
			return tw.Flush()
		},
	})
	return cmd
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send every queued punch now, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDevice()
			if err != nil {
				return err
			}
			defer d.close()

			result, err := offline.NewDrainer(d.store, d.client).Drain(cmd.Context())
			printDrainResult(cmd, result)
			return err
		},
	}
}

func printDrainResult(cmd *cobra.Command, result offline.DrainResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Synced: %d, remaining: %d\n", result.Synced, result.Remaining)
	for _, d := range result.Discarded {
		fmt.Fprintf(out, "Discarded %s %s captured at %s: %s\n",
			d.Punch.Type, d.Punch.LocalID, d.Punch.CapturedAt.Local().Format(time.DateTime), d.Reason)
	}
}

func newAgentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Run in the background, replaying the queue whenever the server is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDevice()
			if err != nil {
				return err
			}
			defer d.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			drainer := offline.NewDrainer(d.store, d.client)
			watcher := offline.NewWatcher(d.client, drainer, d.cfg.ProbeInterval)

			scheduler := cron.NewScheduler(ctx)
			scheduler.AddJob(cron.Job{
				Name:      "retry_offline_queue",
				Interval:  d.cfg.RetryInterval,
				Immediate: true,
				Fn: func(ctx context.Context) error {
					result, err := drainer.Drain(ctx)
					if errors.Is(err, offline.ErrDrainInProgress) {
						return nil
					}
					if result.Synced > 0 || len(result.Discarded) > 0 {
						slog.Info("Offline queue replayed",
							"synced", result.Synced,
							"discarded", len(result.Discarded),
							"remaining", result.Remaining,
						)
					}
					return err
				},
			})
			scheduler.Start()
			defer scheduler.Stop()

			slog.Info("Punch agent running", "api_url", d.cfg.APIURL, "queue", d.cfg.QueuePath)
			watcher.Run(ctx)
			return nil
		},
	}
}
