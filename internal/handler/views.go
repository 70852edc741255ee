package handler

import (
	"errors"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/logview-dev/logview/internal/cache"
	"github.com/logview-dev/logview/internal/engine"
	"github.com/logview-dev/logview/internal/metrics"
	"github.com/logview-dev/logview/internal/model"
	"github.com/logview-dev/logview/internal/response"
	"github.com/logview-dev/logview/internal/scanner"
	"github.com/logview-dev/logview/internal/scheduler"
	"github.com/logview-dev/logview/internal/viewstore"
)

// ViewHandler serves the view, scan, and render endpoints. Scanning is the
// only operation that touches the filesystem tree; every view edit renders
// against the cached rows from the last scan.
type ViewHandler struct {
	Store     *viewstore.Store
	Cache     *cache.Handler
	Metrics   *metrics.Handler
	Scheduler *scheduler.Scheduler
	Log       zerolog.Logger

	mu         sync.Mutex
	activeView string
}

// NewViewHandler wires the handler for one root and its active view.
func NewViewHandler(store *viewstore.Store, c *cache.Handler, m *metrics.Handler,
	s *scheduler.Scheduler, log zerolog.Logger, activeView string) *ViewHandler {
	return &ViewHandler{
		Store:      store,
		Cache:      c,
		Metrics:    m,
		Scheduler:  s,
		Log:        log,
		activeView: activeView,
	}
}

// ActiveView returns the currently selected view name.
func (h *ViewHandler) ActiveView() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.activeView
}

// Close stops the render scheduler.
func (h *ViewHandler) Close() {
	if h.Scheduler != nil {
		h.Scheduler.Stop()
	}
}

type createViewRequest struct {
	Name     string `json:"name"`
	Pattern  string `json:"pattern"`
	CopyFrom string `json:"copy_from,omitempty"`
}

type renameViewRequest struct {
	NewName string `json:"new_name"`
}

type scanRequest struct {
	View *model.View `json:"view,omitempty"`
}

type renderRequest struct {
	View model.View `json:"view"`
}

// GetMeta returns the root and active view name (GET /api/meta).
func (h *ViewHandler) GetMeta(c echo.Context) error {
	return response.OK(c, map[string]any{
		"root":      h.Store.Root(),
		"view_name": h.ActiveView(),
	}, "")
}

// ListViews returns the stored view names (GET /api/views).
func (h *ViewHandler) ListViews(c echo.Context) error {
	names, err := h.Store.List()
	if err != nil {
		return response.InternalError(c, "list views failed", err.Error())
	}
	return response.OK(c, map[string]any{"views": names}, "")
}

// GetActiveView returns the active view (GET /api/view).
func (h *ViewHandler) GetActiveView(c echo.Context) error {
	view, err := h.Store.Load(h.ActiveView())
	if err != nil {
		return h.storeError(c, err)
	}
	return response.OK(c, view, "")
}

// GetView returns one stored view by name (GET /api/views/:name).
func (h *ViewHandler) GetView(c echo.Context) error {
	view, err := h.Store.Load(c.Param("name"))
	if err != nil {
		return h.storeError(c, err)
	}
	return response.OK(c, view, "")
}

// SaveView validates and persists an edited view snapshot (POST /api/view).
// A successful save schedules an implicit re-render over the cached rows;
// it never rescans.
func (h *ViewHandler) SaveView(c echo.Context) error {
	var view model.View
	if err := c.Bind(&view); err != nil {
		return response.BadRequest(c, "invalid JSON body", err.Error())
	}
	// Normalize here too so the response and the scheduled re-render see the
	// same defaults the persisted file gets.
	view.Normalize()
	if _, err := h.Store.Save(view); err != nil {
		return h.storeError(c, err)
	}

	h.Scheduler.Schedule(func() {
		records, _, ok := h.Cache.Records()
		if !ok {
			return
		}
		start := time.Now()
		engine.Render(records, view)
		h.Metrics.ObserveRender(time.Since(start), "save")
	})

	return response.OK(c, view, "View saved")
}

// CreateView creates a view with the default shape, or copies an existing
// one under a new name (POST /api/views).
func (h *ViewHandler) CreateView(c echo.Context) error {
	var req createViewRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid JSON body", err.Error())
	}
	var (
		view model.View
		err  error
	)
	if req.CopyFrom != "" {
		view, err = h.Store.CreateFrom(req.Name, req.CopyFrom)
	} else {
		view, err = h.Store.Create(req.Name, req.Pattern)
	}
	if err != nil {
		return h.storeError(c, err)
	}
	return response.Created(c, view, "View created")
}

// RenameView changes a view's identity, not its content
// (POST /api/views/:name/rename).
func (h *ViewHandler) RenameView(c echo.Context) error {
	var req renameViewRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid JSON body", err.Error())
	}
	oldName := c.Param("name")
	view, err := h.Store.Rename(oldName, req.NewName)
	if err != nil {
		return h.storeError(c, err)
	}
	h.mu.Lock()
	if h.activeView == oldName {
		h.activeView = view.Name
	}
	h.mu.Unlock()
	return response.OK(c, view, "View renamed")
}

// Scan re-walks the root, replaces the raw-row cache wholesale, and returns
// the rendered table for the active (or supplied) view (POST /api/scan).
func (h *ViewHandler) Scan(c echo.Context) error {
	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid JSON body", err.Error())
	}

	var view model.View
	if req.View != nil {
		view = *req.View
		view.Normalize()
		if err := view.Validate(); err != nil {
			return response.BadRequest(c, "invalid view", err.Error())
		}
	} else {
		loaded, err := h.Store.Load(h.ActiveView())
		if err != nil {
			return h.storeError(c, err)
		}
		view = loaded
	}

	start := time.Now()
	result, err := scanner.Scan(h.Store.Root(), view.Pattern, nil)
	if err != nil {
		return response.BadRequest(c, "scan failed", err.Error())
	}
	h.Metrics.ObserveScan(time.Since(start), result.Summary.WarningCount)
	session := h.Cache.Replace(result.Records)

	renderStart := time.Now()
	table := engine.Render(result.Records, view)
	h.Metrics.ObserveRender(time.Since(renderStart), "scan")

	h.Log.Info().
		Str("view", view.Name).
		Int("total_files", result.Summary.TotalFiles).
		Int("matched_files", result.Summary.MatchedFiles).
		Int("parsed_records", result.Summary.ParsedRecords).
		Int("warnings", result.Summary.WarningCount).
		Msg("scan complete")

	return response.OK(c, map[string]any{
		"session":  session,
		"summary":  result.Summary,
		"warnings": result.Warnings,
		"columns": map[string]any{
			"all":     table.AllColumns,
			"visible": table.VisibleColumns,
			"hidden":  view.Columns.Hidden,
			"alias":   view.Columns.Alias,
		},
		"rows": table.Rows,
	}, "")
}

// Render applies a view snapshot to the cached rows without touching the
// filesystem (POST /api/render). 409 until a scan has populated the cache.
func (h *ViewHandler) Render(c echo.Context) error {
	var req renderRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid JSON body", err.Error())
	}
	view := req.View
	view.Normalize()
	if err := view.Validate(); err != nil {
		return response.BadRequest(c, "invalid view", err.Error())
	}

	records, session, ok := h.Cache.Records()
	if !ok {
		return response.Conflict(c, "no_scan", "no scan has populated the row cache",
			"run POST /api/scan first")
	}

	start := time.Now()
	table := engine.Render(records, view)
	h.Metrics.ObserveRender(time.Since(start), "api")

	return response.OK(c, map[string]any{
		"session": session,
		"columns": map[string]any{
			"all":     table.AllColumns,
			"visible": table.VisibleColumns,
			"hidden":  view.Columns.Hidden,
			"alias":   view.Columns.Alias,
		},
		"rows": table.Rows,
	}, "")
}

// Rescan is the watcher entry point: a full re-walk with the active view's
// pattern, replacing the cache. Never incremental.
func (h *ViewHandler) Rescan(trigger string) {
	view, err := h.Store.Load(h.ActiveView())
	if err != nil {
		h.Log.Warn().Err(err).Msg("rescan skipped: active view not loadable")
		return
	}
	start := time.Now()
	result, err := scanner.Scan(h.Store.Root(), view.Pattern, nil)
	if err != nil {
		h.Log.Warn().Err(err).Msg("rescan failed")
		return
	}
	h.Metrics.ObserveScan(time.Since(start), result.Summary.WarningCount)
	h.Cache.Replace(result.Records)

	renderStart := time.Now()
	engine.Render(result.Records, view)
	h.Metrics.ObserveRender(time.Since(renderStart), trigger)

	h.Log.Info().
		Str("trigger", trigger).
		Int("parsed_records", result.Summary.ParsedRecords).
		Int("warnings", result.Summary.WarningCount).
		Msg("rescan complete")
}

// storeError maps store and validation failures onto the error taxonomy.
func (h *ViewHandler) storeError(c echo.Context, err error) error {
	var notFound *viewstore.NotFoundError
	if errors.As(err, &notFound) {
		return response.NotFound(c, "view_not_found", "view not found", err.Error())
	}
	var aliasConflict *engine.AliasConflictError
	if errors.As(err, &aliasConflict) {
		return response.Conflict(c, "alias_conflict", "alias values must be unique", err.Error())
	}
	return response.BadRequest(c, "view operation failed", err.Error())
}
