package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/streamdown/streamdown"
	"github.com/streamdown/streamdown/internal/config"
)

var (
	flagWidth     int
	flagMargin    int
	flagHue       float64
	flagPlain     bool
	flagHideThink bool
)

func init() {
	rootCmd.Flags().IntVarP(&flagWidth, "width", "w", 0, "Wrap width in columns (0 = detect from terminal)")
	rootCmd.Flags().IntVarP(&flagMargin, "margin", "m", 0, "Left margin in columns")
	rootCmd.Flags().Float64Var(&flagHue, "hue", 0, "Base hue for the color theme (0-360)")
	rootCmd.Flags().BoolVar(&flagPlain, "plain", false, "Disable colors and styling")
	rootCmd.Flags().BoolVar(&flagHideThink, "hide-think", false, "Drop <think> block content instead of dimming it")

	viper.BindPFlag("render.width", rootCmd.Flags().Lookup("width"))
	viper.BindPFlag("render.margin", rootCmd.Flags().Lookup("margin"))
	viper.BindPFlag("theme.hue", rootCmd.Flags().Lookup("hue"))
}

var rootCmd = &cobra.Command{
	Use:   "streamdown [file]",
	Short: "Render streaming Markdown to the terminal",
	Long: `streamdown renders Markdown incrementally, styling each line the
moment it arrives. Pipe LLM output (or any Markdown) through it:

  some-llm-cli "explain goroutines" | streamdown
  streamdown README.md
  cat notes.md | streamdown --width 72 --hue 140`,
	Args:              cobra.MaximumNArgs(1),
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)

		input := cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			input = f
		}

		return run(input, cmd.OutOrStdout(), cfg)
	},
}

// applyFlags layers explicit flags over the loaded config, then resolves
// width from the terminal when nothing chose one.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("width") {
		cfg.Render.Width = flagWidth
	}
	if cmd.Flags().Changed("margin") {
		cfg.Render.Margin = flagMargin
	}
	if cmd.Flags().Changed("hue") {
		cfg.Theme.Hue = flagHue
	}
	if flagHideThink {
		cfg.Think.Show = false
	}
	if cfg.Render.Width == 0 {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			cfg.Render.Width = w
		}
	}
}

func run(input io.Reader, output io.Writer, cfg *config.Config) error {
	opts := []streamdown.Option{streamdown.WithConfig(*cfg)}
	if flagPlain {
		opts = append(opts, streamdown.WithPlain())
	}
	s := streamdown.New(output, opts...)

	if _, err := io.Copy(s, input); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := s.Finalize(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
