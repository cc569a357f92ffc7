package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"go.jetify.com/typeid/v2"

	"github.com/taigrr/meshsvg/internal/turntable"
	"github.com/taigrr/meshsvg/pkg/math3d"
	"github.com/taigrr/meshsvg/pkg/models"
	"github.com/taigrr/meshsvg/pkg/render"
	"github.com/taigrr/meshsvg/pkg/svg"
)

const (
	// FrameIDHeader names the typeid assigned to each rendered frame.
	FrameIDHeader = "X-Frame-ID"
	// PolygonsHeader reports how many polygons a frame holds.
	PolygonsHeader = "X-Polygons"

	framePrefix = "frame"
	spinPrefix  = "spin"

	defaultSpinFrames = 36
	defaultSpinFPS    = 24
	maxSpinFPS        = 120
	maxSpinFrames     = 3600
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleRender handles POST /render with a RenderRequest body and answers
// with an SVG document.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	mesh, err := req.SimplicialComplex.Mesh("request")
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, models.ErrIndexOutOfRange) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	cfg, err := req.settings(s.cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cam, err := req.camera(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts, err := cfg.Options()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Fit {
		opts.Model = cam.FitModel(mesh, math3d.Mat4{})
	}

	s.writeFrame(w, r, mesh, cam.Apply(opts), req.shade(), cfg.Width, cfg.Height)
}

// handleMesh handles GET /mesh.svg?yaw=<radians>, rendering the server's
// mesh fitted to the default camera.
func (s *Server) handleMesh(w http.ResponseWriter, r *http.Request) {
	if s.mesh == nil {
		http.Error(w, "no mesh loaded", http.StatusNotFound)
		return
	}
	yaw, err := floatParam(r, "yaw", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cam := s.cfg.Camera()
	opts, err := s.cfg.Options()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	opts.Model = cam.FitModel(s.mesh, math3d.RotateY(yaw))
	s.writeFrame(w, r, s.mesh, cam.Apply(opts), true, s.cfg.Width, s.cfg.Height)
}

func (s *Server) writeFrame(w http.ResponseWriter, r *http.Request, mesh *models.Mesh, opts render.Options, shade bool, width, height int) {
	frame, err := render.RenderMesh(mesh, opts, shade)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	var buf bytes.Buffer
	if err := svg.EncodeFrame(&buf, frame, svg.DefaultOptions(float64(width), float64(height))); err != nil {
		s.log.Error("encode svg", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	id := typeid.MustGenerate(framePrefix).String()
	s.log.Debug("frame",
		"id", id,
		"request_id", RequestIDFrom(r.Context()),
		"cells", frame.Stats.Cells,
		"emitted", frame.Stats.Emitted,
	)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set(FrameIDHeader, id)
	w.Header().Set(PolygonsHeader, strconv.Itoa(frame.Stats.Emitted))
	w.Write(buf.Bytes())
}

// handleSpin handles GET /spin?frames=N&fps=F&loops=L, upgrading to a
// websocket and sending one SVG text message per turntable frame.
func (s *Server) handleSpin(w http.ResponseWriter, r *http.Request) {
	if s.mesh == nil {
		http.Error(w, "no mesh loaded", http.StatusNotFound)
		return
	}
	frames, err := intParam(r, "frames", defaultSpinFrames, 1, maxSpinFrames)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fps, err := intParam(r, "fps", defaultSpinFPS, 1, maxSpinFPS)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	loops, err := intParam(r, "loops", 1, 1, 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Error("websocket accept", "error", err)
		return
	}
	defer conn.CloseNow()

	session := typeid.MustGenerate(spinPrefix).String()
	s.log.Info("spin started", "session", session, "frames", frames, "fps", fps)

	ctx := conn.CloseRead(r.Context())
	if err := s.streamSpin(ctx, conn, frames*loops, turntable.New(fps, frames), time.Second/time.Duration(fps)); err != nil {
		if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
			s.log.Error("spin", "session", session, "error", err)
		}
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) streamSpin(ctx context.Context, conn *websocket.Conn, n int, tt *turntable.Turntable, interval time.Duration) error {
	cam := s.cfg.Camera()
	base, err := s.cfg.Options()
	if err != nil {
		return err
	}
	doc := svg.DefaultOptions(float64(s.cfg.Width), float64(s.cfg.Height))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var buf bytes.Buffer
	for range n {
		opts := base
		opts.Model = cam.FitModel(s.mesh, math3d.RotateY(tt.Next()))
		frame, err := render.RenderMesh(s.mesh, cam.Apply(opts), true)
		if err != nil {
			return err
		}

		buf.Reset()
		if err := svg.EncodeFrame(&buf, frame, doc); err != nil {
			return err
		}

		writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = conn.Write(writeCtx, websocket.MessageText, buf.Bytes())
		cancel()
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func intParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be an integer in [%d, %d]", name, lo, hi)
	}
	return v, nil
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a finite number", name)
	}
	return v, nil
}
