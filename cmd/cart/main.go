package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cartdrawer/cmd/cart/config"
	appconfig "cartdrawer/internal/config"
	"cartdrawer/internal/storefront"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose  bool
	storeURL string
	timeout  time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cart",
	Short: "cartdrawer - interactive storefront cart client",
	Long: `cartdrawer is a terminal client for a storefront cart.

It talks to the platform cart endpoints (/cart.js, /cart/add.js,
/cart/change.js) and renders the cart drawer from the authoritative JSON
response after every change.

Run without arguments to start the interactive drawer.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "cart" && cmd.CalledAs() == "cart" {
			return nil
		}

		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive drawer
		return runDrawer()
	},
}

// addCmd adds a variant to the cart
var addCmd = &cobra.Command{
	Use:   "add [variant-id]",
	Short: "Add a variant to the cart",
	Long: `Adds the given quantity of a variant to the server-side cart and
prints the resulting cart.

Example:
  cart add 40912345 --quantity 2 --property engraving="For Dana"`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

// showCmd prints the cart
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Fetch and display the current cart",
	RunE:  runShow,
}

// updateCmd changes a line quantity
var updateCmd = &cobra.Command{
	Use:   "update [line-key] [quantity]",
	Short: "Set the quantity of a cart line (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE:  runUpdate,
}

// removeCmd removes a line
var removeCmd = &cobra.Command{
	Use:   "remove [line-key]",
	Short: "Remove a cart line",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

// configCmd prints the resolved store profile
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved store profile",
	RunE:  runConfig,
}

var (
	addQuantity   int
	addProperties []string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&storeURL, "store", "", "storefront origin (overrides profile)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout (overrides profile)")

	addCmd.Flags().IntVarP(&addQuantity, "quantity", "q", 1, "quantity to add")
	addCmd.Flags().StringArrayVarP(&addProperties, "property", "p", nil, "line item property key=value (repeatable)")

	rootCmd.AddCommand(addCmd, showCmd, updateCmd, removeCmd, configCmd)
}

// workspaceDir resolves the workspace the .cart directory lives in.
func workspaceDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace: %w", err)
	}
	return cwd, nil
}

// resolveProfile merges the store profile, user config, and flags.
func resolveProfile() (appconfig.Profile, error) {
	workspace, err := workspaceDir()
	if err != nil {
		return appconfig.DefaultProfile(), err
	}
	profile, err := appconfig.LoadProfile(appconfig.ProfilePath(workspace))
	if err != nil {
		return profile, err
	}

	if cfg, err := config.Load(); err == nil {
		if cfg.StoreURL != "" {
			profile.StoreURL = cfg.StoreURL
		}
		if cfg.Currency != "" {
			profile.Currency = cfg.Currency
		}
	}

	if storeURL != "" {
		profile.StoreURL = storeURL
	}
	if timeout > 0 {
		profile.TimeoutSeconds = int(timeout / time.Second)
	}

	if profile.StoreURL == "" {
		return profile, fmt.Errorf("no store configured: set store_url in .cart/storefront.yaml, CARTDRAWER_STORE_URL, or --store")
	}
	return profile, nil
}

func boundaryClient(profile appconfig.Profile) *storefront.Client {
	return storefront.NewWithConfig(storefront.Config{
		BaseURL:   profile.StoreURL,
		Timeout:   profile.Timeout(),
		UserAgent: "cartdrawer/1.0",
	})
}

func runAdd(cmd *cobra.Command, args []string) error {
	variantID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid variant id %q", args[0])
	}

	properties := make(map[string]string)
	for _, kv := range addProperties {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid property %q, expected key=value", kv)
		}
		properties[key] = value
	}

	profile, err := resolveProfile()
	if err != nil {
		return err
	}
	client := boundaryClient(profile)

	ctx := cmd.Context()
	logger.Info("adding item",
		zap.Int64("variant_id", variantID),
		zap.Int("quantity", addQuantity))

	if err := client.AddItem(ctx, variantID, addQuantity, properties); err != nil {
		return fmt.Errorf("add failed: %w", err)
	}
	crt, err := client.GetCart(ctx)
	if err != nil {
		return fmt.Errorf("cart fetch failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %d x %d. Cart now has %d item(s).\n",
		addQuantity, variantID, crt.ItemCount)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	profile, err := resolveProfile()
	if err != nil {
		return err
	}
	client := boundaryClient(profile)

	crt, err := client.GetCart(cmd.Context())
	if err != nil {
		return fmt.Errorf("cart fetch failed: %w", err)
	}

	rendered, err := renderCartMarkdown(crt, profile.Currency)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	quantity, err := strconv.Atoi(args[1])
	if err != nil || quantity < 0 {
		return fmt.Errorf("invalid quantity %q", args[1])
	}

	profile, err := resolveProfile()
	if err != nil {
		return err
	}
	client := boundaryClient(profile)

	logger.Info("updating line", zap.String("key", args[0]), zap.Int("quantity", quantity))
	crt, err := client.ChangeItem(cmd.Context(), args[0], quantity)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cart now has %d item(s).\n", crt.ItemCount)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	profile, err := resolveProfile()
	if err != nil {
		return err
	}
	client := boundaryClient(profile)

	logger.Info("removing line", zap.String("key", args[0]))
	crt, err := client.ChangeItem(cmd.Context(), args[0], 0)
	if err != nil {
		return fmt.Errorf("remove failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed. Cart now has %d item(s).\n", crt.ItemCount)
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	profile, err := resolveProfile()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "store_url: %s\ncurrency: %s\ntimeout: %s\n",
		profile.StoreURL, profile.Currency, profile.Timeout())
	return nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
