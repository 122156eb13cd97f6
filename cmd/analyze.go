package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/buildlane/sitetruth/internal/dashboard"
	"github.com/buildlane/sitetruth/internal/model"
	"github.com/buildlane/sitetruth/pkg/blueprint"
	"github.com/buildlane/sitetruth/pkg/regulatory"
	"github.com/buildlane/sitetruth/pkg/vision"
)

var (
	analyzePhotos     []string
	analyzeBlueprint  string
	analyzeCompliance bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <project-id>",
	Short: "Run the AI analysis providers over a project and reconcile",
	Long:  "Fans out to the visual, blueprint, and compliance providers, applies each result as an atomic batch, then runs the reconciliation pass. A provider failure degrades its pillar; the rest proceed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.Manager.Open(ctx, args[0])
		if err != nil {
			return err
		}

		in := dashboard.AnalysisInput{}

		var vc vision.Client
		if len(analyzePhotos) > 0 {
			if cfg.Vision.Key == "" {
				zap.L().Warn("no vision key configured; photos skipped")
			} else {
				vc = vision.NewClient(cfg.Vision.Key, cfg.Vision.Model)
				in.Images, err = loadImages(analyzePhotos)
				if err != nil {
					return err
				}
			}
		}

		var bc blueprint.Client
		if analyzeBlueprint != "" {
			data, err := os.ReadFile(analyzeBlueprint)
			if err != nil {
				return err
			}
			in.BlueprintText = string(data)
			bc = blueprint.NewClient(cfg.Blueprint.Key,
				blueprint.WithBaseURL(cfg.Blueprint.BaseURL),
				blueprint.WithRPS(cfg.Blueprint.RPS),
			)
		}

		var rc regulatory.Client
		if analyzeCompliance {
			snap := p.GetSnapshot()
			names := make([]string, 0, len(snap.Materials))
			for _, mc := range snap.Materials {
				names = append(names, mc.Item.Name)
			}
			in.Facts = &regulatory.ProjectFacts{
				Trade:         snap.Trade,
				ConfirmedArea: confirmedAreaFrom(snap),
				AreaUnit:      "sq ft",
				Materials:     names,
			}
			rc = regulatory.NewClient(cfg.Regulatory.Key,
				regulatory.WithBaseURL(cfg.Regulatory.BaseURL),
				regulatory.WithRPS(cfg.Regulatory.RPS),
			)
		}

		if err := p.RunFullAnalysis(ctx, vc, bc, rc, in); err != nil {
			return err
		}
		if err := p.Save(ctx); err != nil {
			zap.L().Error("save after analysis failed; in-memory state is still current", zap.Error(err))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p.GetSnapshot())
	},
}

func loadImages(paths []string) ([]vision.Image, error) {
	out := make([]vision.Image, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		mediaType := http.DetectContentType(data)
		if !strings.HasPrefix(mediaType, "image/") {
			mediaType = mime(path)
		}
		out = append(out, vision.Image{MediaType: mediaType, Data: data})
	}
	return out, nil
}

func mime(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

func confirmedAreaFrom(snap dashboard.Snapshot) float64 {
	for _, pillar := range snap.Truth.Pillars {
		if pillar.ID == model.PillarConfirmedArea {
			if n, ok := pillar.Photo.Value.AsNumber(); ok {
				return n
			}
			if n, ok := pillar.Document.Value.AsNumber(); ok {
				return n
			}
		}
	}
	return 0
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzePhotos, "photo", nil, "site photo path (repeatable)")
	analyzeCmd.Flags().StringVar(&analyzeBlueprint, "blueprint", "", "blueprint text file")
	analyzeCmd.Flags().BoolVar(&analyzeCompliance, "compliance", false, "run the code-compliance check")
	rootCmd.AddCommand(analyzeCmd)
}
