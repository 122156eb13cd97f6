package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"

	"github.com/buildlane/sitetruth/internal/model"
	"github.com/buildlane/sitetruth/pkg/blueprint"
	"github.com/buildlane/sitetruth/pkg/regulatory"
	"github.com/buildlane/sitetruth/pkg/vision"
)

// AnalysisInput bundles the raw material each provider consumes. Nil or
// empty fields skip the corresponding provider.
type AnalysisInput struct {
	Images        []vision.Image
	BlueprintText string
	Facts         *regulatory.ProjectFacts
}

// RunFullAnalysis fans out to every configured provider and applies each
// result as an atomic batch. Provider failures degrade their pillar and
// continue: reconciliation always proceeds with partial data. The only
// error returned is context cancellation.
func (p *Project) RunFullAnalysis(ctx context.Context, vc vision.Client, bc blueprint.Client, rc regulatory.Client, in AnalysisInput) error {
	g, gctx := errgroup.WithContext(ctx)

	if vc != nil && len(in.Images) > 0 {
		g.Go(func() error {
			a, err := vc.AnalyzeImages(gctx, in.Images)
			if err != nil {
				p.MarkPillarMissing(model.PillarConfirmedArea, "visual analysis failed")
				zap.L().Warn("dashboard: visual analysis failed",
					zap.String("project", p.id),
					zap.Error(err),
				)
				return nil
			}
			return p.ApplyVisualAnalysis(gctx, a)
		})
	}

	if bc != nil && in.BlueprintText != "" {
		g.Go(func() error {
			ex, err := bc.Extract(gctx, in.BlueprintText)
			if err != nil {
				p.MarkPillarMissing(model.PillarBlueprint, "blueprint extraction failed")
				zap.L().Warn("dashboard: blueprint extraction failed",
					zap.String("project", p.id),
					zap.Error(err),
				)
				return nil
			}
			return p.ApplyBlueprintExtraction(gctx, ex.DetectedArea, len(ex.Dimensions))
		})
	}

	if rc != nil && in.Facts != nil {
		g.Go(func() error {
			ck, err := rc.Check(gctx, *in.Facts)
			if err != nil {
				p.MarkPillarMissing(model.PillarOBCCompliance, "compliance check failed")
				zap.L().Warn("dashboard: compliance check failed",
					zap.String("project", p.id),
					zap.Error(err),
				)
				return nil
			}
			fails := ck.FailCount()
			return p.ApplyComplianceResult(gctx, len(ck.Sections)-fails, fails)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return p.Reconcile(ctx)
}
