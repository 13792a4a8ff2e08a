package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/engine"
)

var ErrUnknownMessage = errors.New("unknown message type")

// Room is one live scene: an engine drawing to a window surface plus the
// clients watching it. Rooms are owned by the hub goroutine.
type Room struct {
	sceneID  string
	engine   *engine.Engine
	clients  map[string]*Client // clientID -> client
	presence *Presence

	// invalidated is set by the window surface when a repaint is requested.
	invalidated bool
	nextTick    time.Time
}

func NewRoom(sceneID string, doc *document.Scene, images engine.ImageResolver, log *slog.Logger) (*Room, error) {
	r := &Room{
		sceneID:  sceneID,
		clients:  make(map[string]*Client),
		presence: NewPresence(),
	}
	r.engine = engine.NewEngine(
		engine.WithHost(engine.HostFunc(func() { r.invalidated = true })),
		engine.WithImages(images),
		engine.WithEngineLogger(log.With("scene_id", sceneID)),
	)
	if err := r.engine.Load(doc); err != nil {
		return nil, fmt.Errorf("open room %s: %w", sceneID, err)
	}
	return r, nil
}

func (r *Room) Engine() *engine.Engine { return r.engine }

func (r *Room) Close() error { return r.engine.Close() }

func (r *Room) sceneInfo() SceneInfo {
	doc := r.engine.Document()
	info := SceneInfo{ID: doc.ID, Name: doc.Name, Background: doc.Background}
	if s := r.engine.Surface(); s != nil {
		info.Width, info.Height, _ = s.Size()
	}
	return info
}

func (r *Room) welcome(c *Client) *Message {
	return newMessage(TypeWelcome, WelcomePayload{
		ClientID: c.ClientID,
		Scene:    r.sceneInfo(),
		Playback: r.engine.Playback(),
	})
}

func (r *Room) playbackState() *Message {
	return newMessage(TypePlaybackState, r.engine.Playback())
}

// frame runs a full draw pass.
func (r *Room) frame() (*Message, error) {
	cmds, err := r.engine.Commands()
	if err != nil {
		return nil, err
	}
	r.invalidated = false
	return r.frameMessage(cmds), nil
}

// flush runs a draw pass once the window has asked for a repaint.
func (r *Room) flush() (*Message, error) {
	if !r.invalidated {
		return nil, nil
	}
	cmds, ok, err := r.engine.Flush()
	if err != nil {
		return nil, err
	}
	r.invalidated = false
	if !ok {
		return nil, nil
	}
	return r.frameMessage(cmds), nil
}

func (r *Room) frameMessage(cmds []engine.DrawCommand) *Message {
	if cmds == nil {
		cmds = []engine.DrawCommand{}
	}
	return newMessage(TypeFrameDraw, FrameDrawPayload{
		Frame:    r.engine.GetFrame(),
		Playing:  r.engine.IsPlaying(),
		Commands: cmds,
	})
}

// apply runs one client request against the room. reply goes back to the
// sender, broadcast to every client in the room. Either may be nil.
func (r *Room) apply(sender *Client, msg *Message) (reply, broadcast *Message, err error) {
	switch msg.Type {
	case TypeLayerTransform:
		var p LayerTransformPayload
		if err := decode(msg, &p); err != nil {
			return nil, nil, err
		}
		return nil, nil, r.engine.SetLayerTransform(p.NodeID, p.Pos, p.Rot, p.Scale)

	case TypeNodeDispose:
		var p NodeDisposePayload
		if err := decode(msg, &p); err != nil {
			return nil, nil, err
		}
		return nil, nil, r.engine.DisposeNode(p.NodeID)

	case TypePlaybackPlay:
		if !r.engine.IsPlaying() {
			r.engine.Play()
			r.nextTick = time.Time{}
		}
		return nil, r.playbackState(), nil

	case TypePlaybackPause:
		r.engine.Pause()
		return nil, r.playbackState(), nil

	case TypePlaybackSeek:
		var p SeekPayload
		if err := decode(msg, &p); err != nil {
			return nil, nil, err
		}
		r.engine.SetPlayhead(p.Frame)
		return nil, r.playbackState(), nil

	case TypeFrameRequest:
		frame, err := r.frame()
		return frame, nil, err

	case TypeHitTest:
		var p HitTestPayload
		if err := decode(msg, &p); err != nil {
			return nil, nil, err
		}
		return newMessage(TypeHitResult, r.engine.HitTestResult(p.X, p.Y)), nil, nil

	case TypeSelectionSet:
		var p SelectionPayload
		if err := decode(msg, &p); err != nil {
			return nil, nil, err
		}
		r.presence.Select(sender.ClientID, p.IDs)
		b := engine.SelectionBounds(r.engine.Scene(), p.IDs)
		reply := newMessage(TypeSelectionBounds, BoundsPayload{
			IDs: p.IDs, X: b.X, Y: b.Y, Width: b.Width, Height: b.Height,
		})
		return reply, r.presence.StateMessage(), nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
}

// tick advances a playing room when its next frame is due.
func (r *Room) tick(now time.Time) bool {
	if !r.engine.IsPlaying() {
		return false
	}
	interval := time.Second / time.Duration(max(r.engine.GetFPS(), 1))
	if r.nextTick.IsZero() {
		r.nextTick = now
	}
	if now.Before(r.nextTick) {
		return false
	}
	r.nextTick = r.nextTick.Add(interval)
	if r.nextTick.Before(now) {
		// Behind schedule: resync instead of catching up.
		r.nextTick = now.Add(interval)
	}
	return r.engine.Advance()
}

func (r *Room) broadcast(msg *Message, excludeClientID string) {
	for id, c := range r.clients {
		if id != excludeClientID {
			c.Send(msg)
		}
	}
}

func decode(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%s: invalid payload: %w", msg.Type, err)
	}
	return nil
}
