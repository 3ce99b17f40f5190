package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Embedding providers selectable through settings.
var embeddingProviders = []struct {
	name        string
	description string
	model       string
	needsKey    bool
}{
	{"openai", "OpenAI API (best quality, requires API key)", "text-embedding-3-small", true},
	{"ollama", "Ollama (local model server)", "nomic-embed-text", false},
	{"hashing", "Hashing (offline, deterministic, no model)", "hashing-v1", false},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider and server options.

Settings are stored in the config file and picked up on the next start.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long:  `Select the embedding provider used for indexing and search.`,
	RunE:  runSettingsEmbedding,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	provider := configStore.GetString("embedding.provider")
	if provider == "" {
		provider = "hashing"
	}
	cmd.Printf("  Provider: %s\n", provider)
	if model := configStore.GetString("embedding.model"); model != "" {
		cmd.Printf("  Model: %s\n", model)
	}
	if baseURL := configStore.GetString("embedding.base_url"); baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider == "openai" {
		if key := configStore.GetString("openai.api_key"); key != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(key))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Println()

	cmd.Println("[Server]")
	port := configStore.GetInt("server.port")
	if port == 0 {
		port = 8000
	}
	cmd.Printf("  Port: %d\n", port)
	cmd.Println()

	cmd.Println("[Snapshot]")
	if dir := configStore.GetString("snapshot.dir"); dir != "" {
		cmd.Printf("  Directory: %s\n", dir)
	} else {
		cmd.Printf("  Directory: (default)\n")
	}
	cmd.Println()

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Embedding Provider")
	for i, p := range embeddingProviders {
		cmd.Printf("  %d. %s\n", i+1, p.description)
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(embeddingProviders), 1)
	selected := embeddingProviders[idx-1]

	cmd.Printf("Enter model name [%s]: ", selected.model)
	model := readLine(reader)
	if model == "" {
		model = selected.model
	}

	if err := configStore.Set("embedding.provider", selected.name); err != nil {
		return fmt.Errorf("saving provider: %w", err)
	}
	if err := configStore.Set("embedding.model", model); err != nil {
		return fmt.Errorf("saving model: %w", err)
	}

	if selected.needsKey {
		cmd.Print("Enter API key: ")
		apiKey := readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
		if err := configStore.Set("openai.api_key", apiKey); err != nil {
			return fmt.Errorf("saving API key: %w", err)
		}
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", selected.name, model)
	cmd.Println("Note: changing the provider invalidates existing snapshots if the dimension differs.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
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

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Read without echo when attached to a terminal.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
