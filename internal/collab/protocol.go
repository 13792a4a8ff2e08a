package collab

import (
	"encoding/json"

	"github.com/inamate/inamate/canvas-go/internal/engine"
)

type Message struct {
	Type     string          `json:"type"`
	SceneID  string          `json:"sceneId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Scene edits
	TypeLayerTransform = "layer.transform"
	TypeNodeDispose    = "node.dispose"

	// Playback
	TypePlaybackPlay  = "playback.play"
	TypePlaybackPause = "playback.pause"
	TypePlaybackSeek  = "playback.seek"
	TypePlaybackState = "playback.state"

	// Drawing
	TypeFrameRequest = "frame.request"
	TypeFrameDraw    = "frame.draw"

	// Queries
	TypeHitTest   = "hit.test"
	TypeHitResult = "hit.result"

	// Viewers
	TypeSelectionSet    = "selection.set"
	TypeSelectionBounds = "selection.bounds"
	TypePresenceState   = "presence.state"
	TypePresenceJoin    = "presence.join"
	TypePresenceLeave   = "presence.leave"
)

type SceneInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background,omitempty"`
}

type WelcomePayload struct {
	ClientID string               `json:"clientId"`
	Scene    SceneInfo            `json:"scene"`
	Playback engine.PlaybackState `json:"playback"`
}

type ErrorPayload struct {
	Message     string `json:"message"`
	RequestType string `json:"requestType,omitempty"`
	Seq         int64  `json:"seq,omitempty"`
}

type LayerTransformPayload struct {
	NodeID string    `json:"nodeId"`
	Pos    []float64 `json:"pos,omitempty"`
	Rot    *float64  `json:"rot,omitempty"`
	Scale  []float64 `json:"scale,omitempty"`
}

type NodeDisposePayload struct {
	NodeID string `json:"nodeId"`
}

type SeekPayload struct {
	Frame int `json:"frame"`
}

// FrameDrawPayload carries one complete draw pass.
type FrameDrawPayload struct {
	Frame    int                  `json:"frame"`
	Playing  bool                 `json:"playing"`
	Commands []engine.DrawCommand `json:"commands"`
}

type HitTestPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type SelectionPayload struct {
	IDs []string `json:"ids"`
}

type BoundsPayload struct {
	IDs    []string `json:"ids"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
}

type Viewer struct {
	ClientID    string   `json:"clientId"`
	UserID      string   `json:"userId"`
	DisplayName string   `json:"displayName"`
	Selection   []string `json:"selection,omitempty"`
}

type PresenceStatePayload struct {
	Viewers []Viewer `json:"viewers"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

func newMessage(msgType string, payload any) *Message {
	msg := &Message{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err == nil {
			msg.Payload = data
		}
	}
	return msg
}

func errorMessage(req *Message, err error) *Message {
	p := ErrorPayload{Message: err.Error()}
	if req != nil {
		p.RequestType = req.Type
		p.Seq = req.Seq
	}
	return newMessage(TypeError, p)
}
