package cli

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/marinebook/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure storage, autosave, execution and export settings.

Settings are stored in ~/.marinebook/config.toml. Execution settings apply
to running sessions immediately; storage and log settings apply on the
next start.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting by its dotted key, for example:

  marinebook settings set storage.backend redis
  marinebook settings set execution.timeout 10s
  marinebook settings set autosave.debounce 500ms`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure storage and execution step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func requireSettings() (*domain.AppSettings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	settings, err := requireSettings()
	if err != nil {
		return err
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend.Description())
	switch settings.Storage.Backend {
	case domain.StorageBackendSQLite:
		cmd.Printf("  Data dir: %s\n", orDefault(settings.Storage.DataDir, "~/.marinebook/data"))
	case domain.StorageBackendRedis:
		cmd.Printf("  Redis: %s\n", maskRedisAddr(settings.Storage.RedisAddr))
	case domain.StorageBackendMemory:
		cmd.Println("  Notebooks are lost when marinebook exits.")
	}
	cmd.Printf("  Quota: %d bytes\n", settings.Storage.QuotaBytes)
	cmd.Printf("  Session fallback TTL: %s\n", settings.Storage.SessionTTL)
	cmd.Println()

	cmd.Println("[Autosave]")
	cmd.Printf("  Debounce: %s\n", settings.Autosave.Debounce)
	cmd.Println()

	cmd.Println("[Execution]")
	cmd.Printf("  Timeout: %s\n", orDefault(durationOrOff(settings.Execution.Timeout.String()), "off"))
	if settings.Execution.RatePerSecond > 0 {
		cmd.Printf("  Rate: %g/s (burst %d)\n", settings.Execution.RatePerSecond, settings.Execution.Burst)
	} else {
		cmd.Println("  Rate: unlimited")
	}
	cmd.Printf("  Parallelism: %d\n", settings.Execution.Parallelism)
	cmd.Println()

	cmd.Println("[Export]")
	cmd.Printf("  Directory: %s\n", orDefault(settings.Export.Dir, "~/.marinebook/exports"))
	cmd.Println()

	cmd.Println("[Log]")
	cmd.Printf("  File: %s\n", orDefault(settings.Log.File, "(stderr)"))

	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	settings, err := requireSettings()
	if err != nil {
		return err
	}
	value, ok := settings.Lookup(args[0])
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)", domain.ErrInvalidInput, args[0], strings.Join(settingsService.Keys(), ", "))
	}
	if args[0] == "storage.redis_addr" {
		value = maskRedisAddr(value)
	}
	cmd.Println(value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Set %s", args[0])
	if strings.HasPrefix(args[0], "storage.") || args[0] == "log.file" {
		printWarning(cmd.OutOrStdout(), "Takes effect the next time marinebook starts")
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	settings, err := requireSettings()
	if err != nil {
		return err
	}

	cmd.Println("Marinebook Settings Wizard")
	cmd.Println("==========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Select Storage Backend")
	cmd.Println("------------------------------")
	backends := domain.AllStorageBackends()
	current := 1
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
		if b == settings.Storage.Backend {
			current = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Storage.Backend = backends[parseChoice(readLine(reader), len(backends), current)-1]
	cmd.Printf("Storage backend: %s\n\n", settings.Storage.Backend.Description())

	cmd.Println("Step 2: Backend Options")
	cmd.Println("-----------------------")
	switch settings.Storage.Backend {
	case domain.StorageBackendSQLite:
		cmd.Printf("Data directory [%s]: ", orDefault(settings.Storage.DataDir, "~/.marinebook/data"))
		if dir := readLine(reader); dir != "" {
			settings.Storage.DataDir = dir
		}
	case domain.StorageBackendRedis:
		cmd.Printf("Redis address [%s]: ", maskRedisAddr(settings.Storage.RedisAddr))
		if addr := readLine(reader); addr != "" {
			settings.Storage.RedisAddr = addr
		}
		cmd.Print("Redis password (leave empty for none): ")
		if pw := readPassword(reader); pw != "" {
			settings.Storage.RedisAddr = withRedisPassword(settings.Storage.RedisAddr, pw)
		}
		cmd.Println()
	case domain.StorageBackendMemory:
		cmd.Println("Nothing to configure. Notebooks are lost when marinebook exits.")
	}
	cmd.Println()

	cmd.Println("Step 3: Execution")
	cmd.Println("-----------------")
	cmd.Printf("Timeout per cell [%s]: ", settings.Execution.Timeout)
	if d, ok := readDuration(cmd, reader); ok {
		settings.Execution.Timeout = d
	}
	cmd.Printf("Autosave debounce [%s]: ", settings.Autosave.Debounce)
	if d, ok := readDuration(cmd, reader); ok {
		settings.Autosave.Debounce = d
	}
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	printSuccess(cmd.OutOrStdout(), "Settings saved. Storage changes apply on the next start.")
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func durationOrOff(s string) string {
	if s == "0s" {
		return ""
	}
	return s
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readDuration reads an optional duration, warning on invalid input.
func readDuration(cmd *cobra.Command, reader *bufio.Reader) (time.Duration, bool) {
	input := readLine(reader)
	if input == "" {
		return 0, false
	}
	d, err := time.ParseDuration(input)
	if err != nil || d < 0 {
		printWarning(cmd.OutOrStdout(), "Ignoring %q: want a duration such as 10s or 500ms", input)
		return 0, false
	}
	return d, true
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal and falls back to a line.
func readPassword(reader *bufio.Reader) string {
	if stdinIsTerminal() {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

// maskRedisAddr hides the password of a redis:// URL.
func maskRedisAddr(addr string) string {
	u, err := url.Parse(addr)
	if err != nil || u.User == nil {
		return addr
	}
	if _, ok := u.User.Password(); !ok {
		return addr
	}
	u.User = url.UserPassword(u.User.Username(), "****")
	return strings.Replace(u.String(), "%2A%2A%2A%2A", "****", 1)
}

// withRedisPassword turns a host:port or redis:// address into a URL
// carrying the password.
func withRedisPassword(addr, password string) string {
	if !strings.Contains(addr, "://") {
		addr = "redis://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return addr
	}
	user := ""
	if u.User != nil {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, password)
	return u.String()
}
