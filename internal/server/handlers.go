package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	argerrors "github.com/argviz/argviz/pkg/errors"
	"github.com/argviz/argviz/pkg/pipeline"
	"github.com/argviz/argviz/pkg/snapshot"
	"github.com/argviz/argviz/pkg/store"
)

// layoutRequest is the body of POST /api/layout.
type layoutRequest struct {
	Snapshot *snapshot.Snapshot `json:"snapshot"`
	Options  pipeline.Options   `json:"options"`
}

// layoutResponse wraps a computed layout with pipeline bookkeeping.
type layoutResponse struct {
	Layout    *snapshot.Layout `json:"layout"`
	GraphHash string           `json:"graph_hash,omitempty"`
	Cached    bool             `json:"cached"`
	Merged    int              `json:"merged_nodes,omitempty"`
}

// uploadResponse is the body returned after storing a snapshot.
type uploadResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Metadata snapshot.Metadata `json:"metadata"`
}

// applyDefaults fills layout options the request left unset from the
// configured server defaults.
func (s *Server) applyDefaults(opts *pipeline.Options) {
	if opts.Width == 0 {
		opts.Width = s.defaults.Width
	}
	if opts.Height == 0 {
		opts.Height = s.defaults.Height
	}
	if opts.Relaxation.MaxTicks == 0 {
		opts.Relaxation.MaxTicks = s.defaults.Relaxation.MaxTicks
	}
	if opts.Relaxation.EnergyThreshold == 0 {
		opts.Relaxation.EnergyThreshold = s.defaults.Relaxation.EnergyThreshold
	}
	if opts.Relaxation.EnergyDecay == 0 {
		opts.Relaxation.EnergyDecay = s.defaults.Relaxation.EnergyDecay
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLayout computes a layout for a snapshot supplied in the request
// body, without persisting it.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, argerrors.Wrap(argerrors.ErrCodeInvalidInput, err, "malformed request body"))
		return
	}
	if req.Snapshot == nil {
		s.writeError(w, argerrors.New(argerrors.ErrCodeInvalidInput, "snapshot is required"))
		return
	}
	s.applyDefaults(&req.Options)
	if err := req.Options.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, argerrors.Wrap(argerrors.ErrCodeInvalidInput, err, "invalid layout options"))
		return
	}

	result, err := s.runner.Execute(r.Context(), req.Snapshot, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		Layout:    result.Layout,
		GraphHash: result.GraphHash,
		Cached:    result.CacheInfo.LayoutHit,
		Merged:    result.Stats.MergedNodes,
	})
}

// handleSnapshotLayout computes a layout for a stored snapshot. Layout
// parameters come from query parameters.
func (s *Server) handleSnapshotLayout(w http.ResponseWriter, r *http.Request) {
	rec, err := s.getRecord(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts, err := optionsFromQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.applyDefaults(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, argerrors.Wrap(argerrors.ErrCodeInvalidInput, err, "invalid layout options"))
		return
	}
	if opts.HasWindow() {
		end := opts.GenomicEnd
		if end == 0 {
			end = rec.Snapshot.Metadata.SequenceLength
		}
		if err := argerrors.ValidateWindow(opts.GenomicStart, end, rec.Snapshot.Metadata.SequenceLength); err != nil {
			s.writeError(w, err)
			return
		}
	}

	result, err := s.runner.Execute(r.Context(), rec.Snapshot, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		Layout:    result.Layout,
		GraphHash: result.GraphHash,
		Cached:    result.CacheInfo.LayoutHit,
		Merged:    result.Stats.MergedNodes,
	})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, argerrors.Wrap(argerrors.ErrCodeStore, err, "list snapshots"))
		return
	}
	writeJSON(w, http.StatusOK, map[string][]store.Info{"snapshots": infos})
}

func (s *Server) handleUploadSnapshot(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "snapshot"
	}
	if err := argerrors.ValidateSnapshotName(name); err != nil {
		s.writeError(w, err)
		return
	}

	snap, err := snapshot.Read(r.Body)
	if err != nil {
		s.writeError(w, argerrors.Wrap(argerrors.ErrCodeInvalidSnapshot, err, "decode snapshot"))
		return
	}
	// Reject snapshots that cannot produce a graph.
	if _, err := snap.ToGraph(); err != nil {
		s.writeError(w, argerrors.Wrap(argerrors.ErrCodeInvalidSnapshot, err, "validate snapshot"))
		return
	}

	rec := &store.Record{Name: name, Snapshot: snap}
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.writeError(w, argerrors.Wrap(argerrors.ErrCodeStore, err, "store snapshot"))
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{
		ID:       rec.ID,
		Name:     rec.Name,
		Metadata: snap.Metadata,
	})
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	rec, err := s.getRecord(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, argerrors.New(argerrors.ErrCodeSnapshotNotFound, "snapshot %s not found", id))
			return
		}
		s.writeError(w, argerrors.Wrap(argerrors.ErrCodeStore, err, "delete snapshot"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getRecord loads the snapshot record named by the {id} route parameter.
func (s *Server) getRecord(r *http.Request) (*store.Record, error) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, argerrors.New(argerrors.ErrCodeSnapshotNotFound, "snapshot %s not found", id)
		}
		return nil, argerrors.Wrap(argerrors.ErrCodeStore, err, "load snapshot")
	}
	return rec, nil
}

// optionsFromQuery parses layout pipeline options from query parameters.
func optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	q := r.URL.Query()

	var err error
	if opts.GenomicStart, err = floatParam(q.Get("genomic_start"), 0); err != nil {
		return opts, argerrors.New(argerrors.ErrCodeInvalidInput, "invalid genomic_start")
	}
	if opts.GenomicEnd, err = floatParam(q.Get("genomic_end"), 0); err != nil {
		return opts, argerrors.New(argerrors.ErrCodeInvalidInput, "invalid genomic_end")
	}
	if opts.Width, err = floatParam(q.Get("width"), 0); err != nil {
		return opts, argerrors.New(argerrors.ErrCodeInvalidInput, "invalid width")
	}
	if opts.Height, err = floatParam(q.Get("height"), 0); err != nil {
		return opts, argerrors.New(argerrors.ErrCodeInvalidInput, "invalid height")
	}

	if v := q.Get("focus_node"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return opts, argerrors.New(argerrors.ErrCodeInvalidFocusNode, "invalid focus_node %q", v)
		}
		opts.FocusNode = &id
	}
	opts.FocusMode = q.Get("focus_mode")

	opts.Dedup = boolParam(q.Get("dedup"))
	opts.Spatial = boolParam(q.Get("spatial"))
	opts.Relax = boolParam(q.Get("relax"))
	opts.Route = boolParam(q.Get("route"))

	return opts, nil
}

func floatParam(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

func boolParam(v string) bool {
	return v == "1" || v == "true"
}
