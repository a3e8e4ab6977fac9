package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chunkgraph/chunkgraph/internal/store"
)

// chunkDump is the on-disk format for ingest-chunks: one document and its
// already-embedded chunks. Parsing and embedding happen upstream; this
// command only loads the result into the store.
type chunkDump struct {
	Document struct {
		ID         string         `json:"id"`
		SourceType string         `json:"sourceType"`
		SourceURI  string         `json:"sourceUri"`
		Title      string         `json:"title"`
		Metadata   map[string]any `json:"metadata"`
	} `json:"document"`
	Chunks []struct {
		ChunkIndex    int            `json:"chunkIndex"`
		Content       string         `json:"content"`
		ContentTokens int            `json:"contentTokens"`
		PageStart     int            `json:"pageStart"`
		PageEnd       int            `json:"pageEnd"`
		Metadata      map[string]any `json:"metadata"`
		Embedding     []float32      `json:"embedding"`
	} `json:"chunks"`
}

var ingestBuild bool

// ingestChunksCmd loads a JSON chunk dump into the store.
var ingestChunksCmd = &cobra.Command{
	Use:   "ingest-chunks <file.json>",
	Short: "Load a JSON dump of embedded chunks",
	Long: `Ingest-chunks upserts one document and its pre-embedded chunks from a
JSON file. Re-running on the same file updates the same rows: documents
upsert by id, chunks by (document, index).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read dump: %w", err)
		}
		var dump chunkDump
		if err := json.Unmarshal(data, &dump); err != nil {
			return fmt.Errorf("parse dump: %w", err)
		}
		if len(dump.Chunks) == 0 {
			return fmt.Errorf("dump contains no chunks")
		}

		svc, st, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		cfg := GetConfig()
		ctx := cmd.Context()

		docID, err := st.UpsertDocument(ctx, store.Document{
			ID:         dump.Document.ID,
			TenantID:   cfg.Tenant.TenantID,
			ClientID:   cfg.Tenant.ClientID,
			SourceType: dump.Document.SourceType,
			SourceURI:  dump.Document.SourceURI,
			Title:      dump.Document.Title,
			Metadata:   dump.Document.Metadata,
		})
		if err != nil {
			return fmt.Errorf("upsert document: %w", err)
		}

		for _, c := range dump.Chunks {
			_, err := st.UpsertChunk(ctx, store.Chunk{
				TenantID:      cfg.Tenant.TenantID,
				ClientID:      cfg.Tenant.ClientID,
				DocumentID:    docID,
				ChunkIndex:    c.ChunkIndex,
				Content:       c.Content,
				ContentTokens: c.ContentTokens,
				PageStart:     c.PageStart,
				PageEnd:       c.PageEnd,
				Metadata:      c.Metadata,
				Embedding:     c.Embedding,
			})
			if err != nil {
				return fmt.Errorf("upsert chunk %d: %w", c.ChunkIndex, err)
			}
		}
		fmt.Printf("Ingested document %s with %d chunks.\n", docID, len(dump.Chunks))

		if !ingestBuild {
			return nil
		}
		result, err := svc.Build(ctx, currentScope(docID), buildConfigFromApp())
		if err != nil {
			return fmt.Errorf("build graph: %w", err)
		}
		return printJSON(result)
	},
}

func init() {
	rootCmd.AddCommand(ingestChunksCmd)
	ingestChunksCmd.Flags().BoolVar(&ingestBuild, "build", false, "run a graph build for the document after ingesting")
}
