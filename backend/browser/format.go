//go:build js && wasm

package browser

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/triangle/gpucore"
)

var formatNames = map[gputypes.TextureFormat]string{
	gputypes.TextureFormatRGBA8Unorm:     "rgba8unorm",
	gputypes.TextureFormatRGBA8UnormSrgb: "rgba8unorm-srgb",
	gputypes.TextureFormatBGRA8Unorm:     "bgra8unorm",
	gputypes.TextureFormatBGRA8UnormSrgb: "bgra8unorm-srgb",
	gputypes.TextureFormatRGBA16Float:    "rgba16float",
}

// canvasFormats are the formats a WebGPU canvas context accepts.
var canvasFormats = []gputypes.TextureFormat{
	gputypes.TextureFormatBGRA8Unorm,
	gputypes.TextureFormatRGBA8Unorm,
	gputypes.TextureFormatRGBA16Float,
}

func formatName(f gputypes.TextureFormat) (string, error) {
	name, ok := formatNames[f]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	return name, nil
}

func parseFormat(name string) gputypes.TextureFormat {
	for f, n := range formatNames {
		if n == name {
			return f
		}
	}
	return gputypes.TextureFormatUndefined
}

var blendFactorNames = map[gputypes.BlendFactor]string{
	gputypes.BlendFactorZero:             "zero",
	gputypes.BlendFactorOne:              "one",
	gputypes.BlendFactorSrc:              "src",
	gputypes.BlendFactorOneMinusSrc:      "one-minus-src",
	gputypes.BlendFactorSrcAlpha:         "src-alpha",
	gputypes.BlendFactorOneMinusSrcAlpha: "one-minus-src-alpha",
	gputypes.BlendFactorDst:              "dst",
	gputypes.BlendFactorOneMinusDst:      "one-minus-dst",
	gputypes.BlendFactorDstAlpha:         "dst-alpha",
}

var blendOperationNames = map[gputypes.BlendOperation]string{
	gputypes.BlendOperationAdd:             "add",
	gputypes.BlendOperationSubtract:        "subtract",
	gputypes.BlendOperationReverseSubtract: "reverse-subtract",
	gputypes.BlendOperationMin:             "min",
	gputypes.BlendOperationMax:             "max",
}

func blendComponent(c gputypes.BlendComponent) map[string]any {
	return map[string]any{
		"operation": blendOperationNames[c.Operation],
		"srcFactor": blendFactorNames[c.SrcFactor],
		"dstFactor": blendFactorNames[c.DstFactor],
	}
}

func topologyName(t gputypes.PrimitiveTopology) string {
	switch t {
	case gputypes.PrimitiveTopologyPointList:
		return "point-list"
	case gputypes.PrimitiveTopologyLineList:
		return "line-list"
	case gputypes.PrimitiveTopologyLineStrip:
		return "line-strip"
	case gputypes.PrimitiveTopologyTriangleStrip:
		return "triangle-strip"
	default:
		return "triangle-list"
	}
}

func cullModeName(c gputypes.CullMode) string {
	switch c {
	case gputypes.CullModeFront:
		return "front"
	case gputypes.CullModeBack:
		return "back"
	default:
		return "none"
	}
}

func frontFaceName(f gputypes.FrontFace) string {
	if f == gputypes.FrontFaceCW {
		return "cw"
	}
	return "ccw"
}

func powerPreferenceName(p gputypes.PowerPreference) string {
	switch p {
	case gputypes.PowerPreferenceLowPower:
		return "low-power"
	case gputypes.PowerPreferenceHighPerformance:
		return "high-performance"
	default:
		return ""
	}
}

func alphaModeName(m gputypes.CompositeAlphaMode) string {
	if m == gputypes.CompositeAlphaModePremultiplied {
		return "premultiplied"
	}
	return "opaque"
}

func loadOpName(ca gpucore.ColorAttachment) string {
	if ca.LoadOp == gputypes.LoadOpLoad {
		return "load"
	}
	return "clear"
}

func storeOpName(ca gpucore.ColorAttachment) string {
	if ca.StoreOp == gputypes.StoreOpDiscard {
		return "discard"
	}
	return "store"
}
