package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/innocurve/inoclone/internal/config"
	"github.com/innocurve/inoclone/internal/ingest"
	"github.com/innocurve/inoclone/internal/storage"
)

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show inoclone system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			// Still show partial status even if config fails.
			printError("config error: %v", err)
			return nil
		}

		client := &http.Client{Timeout: 2 * time.Second}
		resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port))
		if err != nil {
			printStatus("Server", "stopped")
		} else {
			resp.Body.Close()
			if resp.StatusCode == 200 {
				printStatus("Server", "running on port %d", cfg.Server.Port)
			} else {
				printStatus("Server", "error (HTTP %d)", resp.StatusCode)
			}
		}

		printStatus("Chat model", "%s", cfg.OpenAI.ChatModel)
		printStatus("Owner ID", "%d", cfg.Owner.ID)

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			printError("opening storage: %v", err)
		} else {
			defer store.Close()
			if count, err := store.CountChunks(); err != nil {
				printWarning("counting knowledge chunks: %v", err)
			} else {
				printStatus("Knowledge chunks", "%d", count)
				if count == 0 {
					printWarning("knowledge pool is empty; run 'inoclone ingest' to add content")
				}
			}
		}

		printStatus("Data dir", "%s", cfg.Storage.DataDir)
		return nil
	},
}

// --- ingest ---

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest content into the knowledge pool",
	Long: `Ingest content into the knowledge pool.

Examples:
  inoclone ingest --text "이노커브는 AI 솔루션을 개발합니다."
  inoclone ingest --file ./company-intro.pdf
  inoclone ingest --file ./notes.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")

		if text == "" && file == "" {
			return fmt.Errorf("one of --text or --file is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		ingestor := ingest.NewIngestor(store)

		var count int
		if text != "" {
			count, err = ingestor.IngestText(text, "cli")
		} else {
			count, err = ingestor.IngestFile(file)
		}
		if err != nil {
			return err
		}

		printSuccess("Stored %d chunk(s)", count)
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("text", "", "text content to ingest")
	ingestCmd.Flags().String("file", "", "PDF or text file to ingest")
}

// --- seed ---

type seedFile struct {
	Owner       storage.Owner        `json:"owner"`
	Experiences []storage.Experience `json:"experiences"`
	Projects    []storage.Project    `json:"projects"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load an owner profile bundle (owner, experiences, projects) from JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading seed file: %w", err)
		}

		var seed seedFile
		if err := json.Unmarshal(data, &seed); err != nil {
			return fmt.Errorf("parsing seed file: %w", err)
		}
		if seed.Owner.Name == "" {
			return fmt.Errorf("seed file must contain an owner with a name")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		ownerID, err := store.InsertOwner(seed.Owner)
		if err != nil {
			return fmt.Errorf("inserting owner: %w", err)
		}

		for _, e := range seed.Experiences {
			e.OwnerID = ownerID
			if err := store.InsertExperience(e); err != nil {
				return fmt.Errorf("inserting experience: %w", err)
			}
		}
		for _, p := range seed.Projects {
			p.OwnerID = ownerID
			if err := store.InsertProject(p); err != nil {
				return fmt.Errorf("inserting project: %w", err)
			}
		}

		printSuccess("Seeded owner %s (id %d) with %d experience(s) and %d project(s)",
			seed.Owner.Name, ownerID, len(seed.Experiences), len(seed.Projects))
		return nil
	},
}
