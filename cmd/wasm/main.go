//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/inamate/canvas-go/internal/engine"
)

var eng *engine.Engine

func main() {
	// The browser canvas is the window: invalidation asks the page to
	// schedule a draw pass.
	eng = engine.NewEngine(engine.WithHost(engine.HostFunc(invalidate)))

	canvasEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	canvasEngine.Set("loadDocument", js.FuncOf(loadDocument))
	canvasEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	canvasEngine.Set("setPlayhead", js.FuncOf(setPlayhead))
	canvasEngine.Set("play", js.FuncOf(play))
	canvasEngine.Set("pause", js.FuncOf(pause))
	canvasEngine.Set("togglePlay", js.FuncOf(togglePlay))
	canvasEngine.Set("setSelection", js.FuncOf(setSelection))
	canvasEngine.Set("setLayerTransform", js.FuncOf(setLayerTransform))
	canvasEngine.Set("disposeNode", js.FuncOf(disposeNode))
	canvasEngine.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← engine) ---
	canvasEngine.Set("render", js.FuncOf(render))
	canvasEngine.Set("flush", js.FuncOf(flush))
	canvasEngine.Set("hitTest", js.FuncOf(hitTest))
	canvasEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	canvasEngine.Set("getScene", js.FuncOf(getScene))
	canvasEngine.Set("getPlaybackState", js.FuncOf(getPlaybackState))
	canvasEngine.Set("getDocument", js.FuncOf(getDocument))
	canvasEngine.Set("getSelection", js.FuncOf(getSelection))
	canvasEngine.Set("getFrame", js.FuncOf(getFrame))
	canvasEngine.Set("isPlaying", js.FuncOf(isPlaying))
	canvasEngine.Set("getFPS", js.FuncOf(getFPS))
	canvasEngine.Set("getTotalFrames", js.FuncOf(getTotalFrames))

	js.Global().Set("canvasEngine", canvasEngine)
	js.Global().Set("canvasWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func invalidate() {
	cb := js.Global().Get("canvasInvalidate")
	if cb.Type() == js.TypeFunction {
		cb.Invoke()
	}
}

func errorResult(err error) js.Value {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() js.Value {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}
	if err := eng.LoadDocument(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	sceneID := "scene_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		sceneID = args[0].String()
	}
	if err := eng.LoadSample(sceneID); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setPlayhead(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetPlayhead(args[0].Int())
	return nil
}

func play(this js.Value, args []js.Value) interface{} {
	eng.Play()
	return nil
}

func pause(this js.Value, args []js.Value) interface{} {
	eng.Pause()
	return nil
}

func togglePlay(this js.Value, args []js.Value) interface{} {
	eng.TogglePlay()
	return nil
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

type transformArgs struct {
	Pos   []float64 `json:"pos"`
	Rot   *float64  `json:"rot"`
	Scale []float64 `json:"scale"`
}

// setLayerTransform(nodeId, '{"pos":[x,y],"rot":r,"scale":[sx,sy]}')
func setLayerTransform(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "expected nodeId and transform JSON"})
	}
	var t transformArgs
	if err := json.Unmarshal([]byte(args[1].String()), &t); err != nil {
		return errorResult(err)
	}
	if err := eng.SetLayerTransform(args[0].String(), t.Pos, t.Rot, t.Scale); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func disposeNode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing nodeId"})
	}
	if err := eng.DisposeNode(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func tick(this js.Value, args []js.Value) interface{} {
	return eng.Tick()
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return eng.Render()
}

// flush returns draw commands JSON when a repaint is pending, else null.
func flush(this js.Value, args []js.Value) interface{} {
	cmds, ok, err := eng.Flush()
	if err != nil || !ok {
		return nil
	}
	out, _ := engine.DrawCommandsToJSON(cmds)
	return out
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return ""
	}
	return eng.HitTest(args[0].Float(), args[1].Float())
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return eng.GetSelectionBounds()
}

func getScene(this js.Value, args []js.Value) interface{} {
	return eng.GetScene()
}

func getPlaybackState(this js.Value, args []js.Value) interface{} {
	return eng.GetPlaybackState()
}

func getDocument(this js.Value, args []js.Value) interface{} {
	doc := eng.Document()
	if doc == nil {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	return string(data)
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return eng.GetSelection()
}

func getFrame(this js.Value, args []js.Value) interface{} {
	return eng.GetFrame()
}

func isPlaying(this js.Value, args []js.Value) interface{} {
	return eng.IsPlaying()
}

func getFPS(this js.Value, args []js.Value) interface{} {
	return eng.GetFPS()
}

func getTotalFrames(this js.Value, args []js.Value) interface{} {
	return eng.GetTotalFrames()
}
