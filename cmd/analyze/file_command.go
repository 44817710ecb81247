package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/okian/gametaste/internal/adapters/candidates"
	app "github.com/okian/gametaste/internal/app"
	"github.com/okian/gametaste/internal/domain/catalog"
	"github.com/okian/gametaste/internal/domain/model"
	"github.com/okian/gametaste/pkg/logger"
)

func newFileCommand(opts *options) *cobra.Command {
	var (
		libraryPath    string
		candidatesPath string
		limit          int
	)

	cmd := &cobra.Command{
		Use:   "file",
		Short: "Analyze a library file against a candidate catalog file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			library, err := loadLibrary(libraryPath)
			if err != nil {
				return err
			}
			req := app.AnalyzeRequest{Library: library, Limit: limit}
			if candidatesPath != "" {
				src, err := candidates.LoadFile(candidatesPath)
				if err != nil {
					return err
				}
				if req.Candidates, err = src.Candidates(cmd.Context(), candidates.Request{}); err != nil {
					return err
				}
				req.SkippedCandidates = src.Skipped()
			}

			svc, err := app.FromConfig(cmd.Context(), cfg, logger.Get())
			if err != nil {
				return err
			}
			a, err := svc.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeAnalysis(cmd, opts.format, a)
		},
	}

	cmd.Flags().StringVarP(&libraryPath, "library", "l", "", "Library file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&candidatesPath, "candidates", "", "Candidate catalog file (.json, .yaml or .yml)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Recommendation count (5-10, default from config)")
	_ = cmd.MarkFlagRequired("library")

	return cmd
}

// loadLibrary reads raw titles from a bare JSON array, a JSON object with a
// "library" key, or a YAML document with a "library" key. Records are decoded
// one by one; a record of the wrong shape is rejected by the run, not here.
func loadLibrary(path string) ([]model.RawTitle, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read library: %w", err)
		}
		titles, err := catalog.DecodeLibraryJSON(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return titles, nil
	case ".yaml", ".yml":
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read library %s: %w", path, err)
		}
		values, ok := k.Get("library").([]any)
		if !ok {
			return nil, fmt.Errorf("decode library %s: library must be a list", path)
		}
		return catalog.DecodeValues(values), nil
	default:
		return nil, fmt.Errorf("library %s: unsupported extension", path)
	}
}
