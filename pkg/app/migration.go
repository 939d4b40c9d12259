package app

import (
	"context"

	"tableflip.dev/lowerthird/pkg/imagelink"
	"tableflip.dev/lowerthird/pkg/overlay"
)

// MigrationResult reports what Migrate changed.
type MigrationResult struct {
	// DroppedIDs were listed in the catalog without a stored record.
	DroppedIDs []string
	// AdoptedIDs were stored but missing from the catalog order.
	AdoptedIDs []string
	// RewrittenLayers counts layer links replaced by their direct form.
	RewrittenLayers int
	// ActiveThemeReset is set when the active theme no longer existed.
	ActiveThemeReset bool
}

// Changed reports whether Migrate touched anything.
func (r MigrationResult) Changed() bool {
	return len(r.DroppedIDs) > 0 || len(r.AdoptedIDs) > 0 || r.RewrittenLayers > 0 || r.ActiveThemeReset
}

// Migrate brings a catalog written by an older version, or edited by hand,
// back in line with the stored records. Sharing links saved in theme layers
// are rewritten to their direct download form.
func (s *Service) Migrate(ctx context.Context) (MigrationResult, error) {
	var res MigrationResult
	p, err := s.persistence()
	if err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	cat, err := p.Catalog()
	if err != nil {
		return res, err
	}

	overlays := p.Overlays(ctx)
	overlayIDs := make([]string, 0, len(overlays))
	for _, o := range overlays {
		overlayIDs = append(overlayIDs, o.ID)
	}
	themes := p.Themes(ctx)
	themeIDs := make([]string, 0, len(themes))
	for _, t := range themes {
		themeIDs = append(themeIDs, t.ID)
		if n := normalizeLayers(t); n > 0 {
			if err := p.StoreTheme(t); err != nil {
				return res, err
			}
			res.RewrittenLayers += n
		}
	}

	cat.Overlays = reconcile(cat.Overlays, overlayIDs, &res)
	cat.Themes = reconcile(cat.Themes, themeIDs, &res)

	if cat.ActiveThemeID != "" && !contains(themeIDs, cat.ActiveThemeID) {
		res.ActiveThemeReset = true
		cat.ActiveThemeID = ""
		if len(cat.Themes) > 0 {
			cat.ActiveThemeID = cat.Themes[0]
		}
	}
	if !res.Changed() {
		return res, nil
	}
	return res, p.SaveCatalog(cat)
}

// reconcile keeps the known order of stored ids and appends the rest in
// their stored order.
func reconcile(order, stored []string, res *MigrationResult) []string {
	out := make([]string, 0, len(stored))
	for _, id := range order {
		if contains(stored, id) && !contains(out, id) {
			out = append(out, id)
			continue
		}
		if !contains(stored, id) {
			res.DroppedIDs = append(res.DroppedIDs, id)
		}
	}
	for _, id := range stored {
		if !contains(out, id) {
			res.AdoptedIDs = append(res.AdoptedIDs, id)
			out = append(out, id)
		}
	}
	return out
}

func normalizeLayers(t *overlay.Theme) int {
	n := 0
	for _, ref := range []*string{&t.Layer1, &t.Layer2, &t.Layer3} {
		if *ref == "" {
			continue
		}
		if direct := imagelink.Normalize(*ref); direct != *ref {
			*ref = direct
			n++
		}
	}
	return n
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
