package main

import (
	"bufio"
	"clubdesk/src/scanner"
	"clubdesk/src/types"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/covalenthq/lumberjack"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

var cfg = viper.New()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(iconError+" "+err.Error()))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scanstation",
	Short: "Door station for guest list admission",
	Long: `scanstation reads guest codes from a camera or the keyboard and
validates them against the club desk API.

Configuration comes from flags or SCANSTATION_* environment variables.

Get started by running: scanstation login`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		initLogger(cfg.GetString("log-file"))
		return nil
	},
}

func init() {
	cfg.SetEnvPrefix("SCANSTATION")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()

	rootCmd.PersistentFlags().String("api", "http://localhost:9090", "club desk API base URL")
	rootCmd.PersistentFlags().String("log-file", "logs/scanstation.log", "where scanner logs are written")

	for _, c := range []*cobra.Command{runCmd, checkCmd} {
		c.Flags().String("token", "", "station bearer token")
		c.Flags().String("camera", "", "snapshot file path or http(s) snapshot URL")
		c.Flags().String("camera-user", "", "camera username")
		c.Flags().String("camera-pass", "", "camera password")
		c.Flags().Duration("interval", scanner.DefaultFrameInterval, "time between camera frames")
		c.Flags().Duration("cooldown", scanner.DefaultCooldown, "how long a decoded code is held back before it is sent again")
	}
	loginCmd.Flags().String("email", "", "staff email")

	rootCmd.AddCommand(runCmd, checkCmd, loginCmd, versionCmd)
}

func initLogger(filename string) {
	if filename == "" {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   filename,
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     14,
	})
}

func newCamera() scanner.Camera {
	target := cfg.GetString("camera")
	switch {
	case target == "":
		return nil
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		return scanner.NewHTTPCamera(target, cfg.GetString("camera-user"), cfg.GetString("camera-pass"))
	}
	return &scanner.FileCamera{Path: target}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scanstation version %s\n", version)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether the camera can be used",
	Run: func(cmd *cobra.Command, args []string) {
		ch := scanner.NewChannel(newCamera(), scanner.NewQRDecoder(), nil)
		state := ch.Init(cmd.Context())
		_, reason := ch.State()
		fmt.Fprintln(cmd.OutOrStdout(), renderState(state, reason))
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and print a station token",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()
		email := cfg.GetString("email")
		if email == "" {
			fmt.Fprint(out, promptStyle.Render("Email: "))
			line, _ := in.ReadString('\n')
			email = strings.TrimSpace(line)
		}
		fmt.Fprint(out, promptStyle.Render("Password: "))
		line, _ := in.ReadString('\n')
		password := strings.TrimSpace(line)

		token, err := scanner.NewAPIClient(cfg.GetString("api"), "").Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, successStyle.Render(iconSuccess+" Signed in."))
		fmt.Fprintf(out, "export SCANSTATION_TOKEN=%s\n", token)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start scanning",
	RunE: func(cmd *cobra.Command, args []string) error {
		token := cfg.GetString("token")
		if token == "" {
			return errors.New("no station token, run scanstation login first")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s := &station{out: cmd.OutOrStdout()}
		s.channel = scanner.NewChannel(
			newCamera(),
			scanner.NewQRDecoder(),
			scanner.NewAPIClient(cfg.GetString("api"), token),
			scanner.WithFrameInterval(cfg.GetDuration("interval")),
			scanner.WithDebouncer(scanner.NewDebouncer(cfg.GetDuration("cooldown"))),
			scanner.WithResultHandler(s.cameraResult),
		)
		return s.run(ctx, cmd.InOrStdin())
	},
}

type station struct {
	channel *scanner.Channel
	out     io.Writer

	mu    sync.Mutex
	loop  sync.WaitGroup
	input sync.WaitGroup
}

func (s *station) print(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, text)
}

func (s *station) cameraResult(res scanner.Result) {
	if res.Source == types.SCAN_SOURCE_CAMERA {
		s.print(renderResult(res))
	}
}

func (s *station) showState() scanner.State {
	state, reason := s.channel.State()
	s.print(renderState(state, reason))
	return state
}

func (s *station) startCamera(ctx context.Context) {
	if state, _ := s.channel.State(); state != scanner.StateActive {
		return
	}
	s.loop.Add(1)
	go func() {
		defer s.loop.Done()
		if err := s.channel.Run(ctx); err != nil {
			log.Printf("[station] decode loop not started: %s\n", err.Error())
			return
		}
		if ctx.Err() == nil {
			s.showState()
		}
	}()
}

func (s *station) run(ctx context.Context, stdin io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer s.loop.Wait()
	defer cancel()

	s.print(titleStyle.Render("Club Desk door station") + " " + mutedStyle.Render(version))
	s.channel.Init(ctx)
	s.showState()
	s.startCamera(ctx)

	// Not waited on: a read from a terminal cannot be interrupted.
	lines := make(chan string)
	s.input.Add(1)
	go func() {
		defer s.input.Done()
		defer close(lines)
		sc := bufio.NewScanner(stdin)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if !s.handleLine(ctx, strings.TrimSpace(line)) {
				return nil
			}
		}
	}
}

// handleLine reports false when the operator asked to quit.
func (s *station) handleLine(ctx context.Context, line string) bool {
	switch line {
	case "":
		return true
	case ":quit", ":q":
		return false
	case ":grant", ":retry":
		s.channel.Grant(ctx)
		s.showState()
		s.startCamera(ctx)
		return true
	case ":state":
		s.showState()
		return true
	}
	res := s.channel.SubmitManual(ctx, line)
	if errors.Is(res.Err, scanner.ErrEmptyCode) || errors.Is(res.Err, scanner.ErrInFlight) {
		s.print(mutedStyle.Render(iconPointer + " " + res.Err.Error()))
		return true
	}
	s.print(renderResult(res))
	return true
}
