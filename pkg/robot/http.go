package robot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// httpClient is shared by all HTTPController instances; the timeout
// keeps a stalled daemon from blocking the command loop.
var httpClient = &http.Client{
	Timeout: 2 * time.Second,
}

// HTTPController implements Proxy against the motor daemon's HTTP API.
type HTTPController struct {
	BaseURL string
}

var _ Proxy = (*HTTPController)(nil)

// NewHTTPController creates a controller for the daemon on the given
// robot address, e.g. "192.168.1.20:8000".
func NewHTTPController(addr string) *HTTPController {
	return &HTTPController{BaseURL: "http://" + addr}
}

// SetAngles commands the named joints via the daemon.
func (r *HTTPController) SetAngles(names []string, angles []float64, speed float64) error {
	return r.post("/api/motion/set_angles", map[string]interface{}{
		"names":  names,
		"angles": angles,
		"speed":  speed,
	})
}

// MoveToward drives the base at the given velocities.
func (r *HTTPController) MoveToward(vx, vy, wz float64) error {
	return r.post("/api/motion/move_toward", map[string]interface{}{
		"vx": vx,
		"vy": vy,
		"wz": wz,
	})
}

// StopMove halts the base.
func (r *HTTPController) StopMove() error {
	return r.post("/api/motion/stop_move", nil)
}

// GoToPosture moves the whole body to a named posture.
func (r *HTTPController) GoToPosture(posture string, speed float64) error {
	return r.post("/api/posture/go_to", map[string]interface{}{
		"posture": posture,
		"speed":   speed,
	})
}

func (r *HTTPController) post(path string, payload interface{}) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return fmt.Errorf("marshal %s payload: %w", path, err)
		}
	}
	resp, err := httpClient.Post(r.BaseURL+path, "application/json", &body)
	if err != nil {
		return fmt.Errorf("daemon request %s failed: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("daemon request %s: status %d", path, resp.StatusCode)
	}
	return nil
}
