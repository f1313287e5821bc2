package routes

import (
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/sofahub/sofahub/internal/metrics"
	"github.com/sofahub/sofahub/internal/resource"
)

// RegisterResourceRoutes 暴露 /-/resources 诊断接口，列出资源类型、磁盘布局、
// 生效的读取策略以及本进程内的缓存计数。stats 通常为 (*cache.Store).Stats，可为 nil。
func RegisterResourceRoutes(app *fiber.App, policies resource.Policies, stats func() map[string]metrics.CacheCounts) {
	if app == nil {
		return
	}

	app.Get("/-/resources", func(c fiber.Ctx) error {
		var snapshot map[string]metrics.CacheCounts
		if stats != nil {
			snapshot = stats()
		}
		return c.JSON(fiber.Map{
			"resources": encodeResources(resource.List(), policies, snapshot),
		})
	})

	app.Get("/-/resources/:name", func(c fiber.Ctx) error {
		name := strings.ToLower(strings.TrimSpace(c.Params("name")))
		meta, ok := resource.Resolve(name)
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resource_not_found"})
		}
		encoded := encodeResource(meta, policies)
		if stats != nil {
			if counts, ok := stats()[string(meta.Type)]; ok {
				encoded.Counters = &counts
			}
		}
		return c.JSON(encoded)
	})
}

type resourcePayload struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Layout      string               `json:"layout"`
	KeyShape    string               `json:"key_shape"`
	Policy      policyPayload        `json:"policy"`
	Counters    *metrics.CacheCounts `json:"counters,omitempty"`
}

type policyPayload struct {
	Forever    bool   `json:"forever"`
	TTLSeconds int64  `json:"ttl_seconds"`
	Summary    string `json:"summary"`
}

func encodeResources(metas []resource.Metadata, policies resource.Policies, counts map[string]metrics.CacheCounts) []resourcePayload {
	if len(metas) == 0 {
		return nil
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].Type < metas[j].Type
	})
	result := make([]resourcePayload, 0, len(metas))
	for _, meta := range metas {
		item := encodeResource(meta, policies)
		if snapshot, ok := counts[string(meta.Type)]; ok {
			item.Counters = &snapshot
		}
		result = append(result, item)
	}
	return result
}

func encodeResource(meta resource.Metadata, policies resource.Policies) resourcePayload {
	policy := meta.Policy
	if policies != nil {
		policy = policies.For(meta.Type)
	}
	layout := meta.Layout
	if layout == "" {
		layout = resource.LayoutFlat
	}
	return resourcePayload{
		Name:        string(meta.Type),
		Description: meta.Description,
		Layout:      string(layout),
		KeyShape:    meta.KeyShape,
		Policy: policyPayload{
			Forever:    policy.Forever,
			TTLSeconds: int64(policy.TTL / time.Second),
			Summary:    policy.String(),
		},
	}
}
