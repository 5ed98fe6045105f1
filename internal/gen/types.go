package gen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned for C declarations with no Go equivalent.
var ErrUnknownType = errors.New("no Go mapping for C type")

// opaque marks types only ever passed by pointer; those pointers become
// unsafe.Pointer.
const opaque = "<opaque>"

// registryTypes maps registry typedef names to Go types. Generated files
// declare each selected name as an alias of its Go type.
var registryTypes = map[string]string{
	// gl.xml
	"GLenum":               "uint32",
	"GLboolean":            "uint8",
	"GLbitfield":           "uint32",
	"GLvoid":               "",
	"GLbyte":               "int8",
	"GLubyte":              "uint8",
	"GLshort":              "int16",
	"GLushort":             "uint16",
	"GLint":                "int32",
	"GLuint":               "uint32",
	"GLclampx":             "int32",
	"GLsizei":              "int32",
	"GLfloat":              "float32",
	"GLclampf":             "float32",
	"GLdouble":             "float64",
	"GLclampd":             "float64",
	"GLchar":               "byte",
	"GLcharARB":            "byte",
	"GLhandleARB":          "uint32",
	"GLhalf":               "uint16",
	"GLhalfARB":            "uint16",
	"GLhalfNV":             "uint16",
	"GLfixed":              "int32",
	"GLintptr":             "int",
	"GLintptrARB":          "int",
	"GLsizeiptr":           "int",
	"GLsizeiptrARB":        "int",
	"GLint64":              "int64",
	"GLint64EXT":           "int64",
	"GLuint64":             "uint64",
	"GLuint64EXT":          "uint64",
	"GLsync":               "uintptr",
	"GLvdpauSurfaceNV":     "int",
	"GLeglClientBufferEXT": "unsafe.Pointer",
	"GLeglImageOES":        "unsafe.Pointer",
	"GLDEBUGPROC":          "uintptr",
	"GLDEBUGPROCARB":       "uintptr",
	"GLDEBUGPROCKHR":       "uintptr",
	"GLDEBUGPROCAMD":       "uintptr",
	"GLVULKANPROCNV":       "uintptr",
	"_cl_context":          opaque,
	"_cl_event":            opaque,

	// glx.xml
	"Bool":                      "int32",
	"Status":                    "int32",
	"XID":                       "uintptr",
	"Font":                      "uintptr",
	"Pixmap":                    "uintptr",
	"Window":                    "uintptr",
	"Colormap":                  "uintptr",
	"VisualID":                  "uintptr",
	"GLXDrawable":               "uintptr",
	"GLXPixmap":                 "uintptr",
	"GLXWindow":                 "uintptr",
	"GLXPbuffer":                "uintptr",
	"GLXPbufferSGIX":            "uintptr",
	"GLXContextID":              "uintptr",
	"GLXFBConfigID":             "uintptr",
	"GLXFBConfigIDSGIX":         "uintptr",
	"GLXVideoSourceSGIX":        "uintptr",
	"GLXVideoCaptureDeviceNV":   "uintptr",
	"GLXVideoDeviceNV":          "uint32",
	"GLXContext":                "unsafe.Pointer",
	"GLXFBConfig":               "unsafe.Pointer",
	"GLXFBConfigSGIX":           "unsafe.Pointer",
	"__GLXextFuncPtr":           "uintptr",
	"Display":                   opaque,
	"XVisualInfo":               opaque,
	"Visual":                    opaque,
	"GLXHyperpipeNetworkSGIX":   opaque,
	"GLXHyperpipeConfigSGIX":    opaque,
	"GLXPipeRect":               opaque,
	"GLXPipeRectLimits":         opaque,
	"GLXPbufferClobberEvent":    opaque,
	"GLXBufferSwapComplete":     opaque,
	"GLXBufferClobberEventSGIX": opaque,
	"GLXStereoNotifyEventEXT":   opaque,
	"GLXEvent":                  opaque,
	"DMbuffer":                  "uintptr",
	"DMparams":                  opaque,
	"VLServer":                  "uintptr",
	"VLPath":                    "int32",
	"VLNode":                    "uintptr",

	// wgl.xml
	"BOOL":                   "int32",
	"BYTE":                   "uint8",
	"CHAR":                   "byte",
	"COLORREF":               "uint32",
	"DWORD":                  "uint32",
	"FLOAT":                  "float32",
	"INT":                    "int32",
	"INT32":                  "int32",
	"INT64":                  "int64",
	"UINT":                   "uint32",
	"USHORT":                 "uint16",
	"VOID":                   "",
	"LPVOID":                 "unsafe.Pointer",
	"LPCSTR":                 "*byte",
	"LPGLYPHMETRICSFLOAT":    "unsafe.Pointer",
	"LPLAYERPLANEDESCRIPTOR": "unsafe.Pointer",
	"PROC":                   "uintptr",
	"HANDLE":                 "uintptr",
	"HDC":                    "uintptr",
	"HGLRC":                  "uintptr",
	"HENHMETAFILE":           "uintptr",
	"HPBUFFERARB":            "uintptr",
	"HPBUFFEREXT":            "uintptr",
	"HGPUNV":                 "uintptr",
	"HPGPUNV":                "uintptr",
	"HPVIDEODEV":             "uintptr",
	"HVIDEOINPUTDEVICENV":    "uintptr",
	"HVIDEOOUTPUTDEVICENV":   "uintptr",
	"LAYERPLANEDESCRIPTOR":   opaque,
	"PIXELFORMATDESCRIPTOR":  opaque,
	"GLYPHMETRICSFLOAT":      opaque,
	"POINTFLOAT":             opaque,
	"GPU_DEVICE":             opaque,
	"_GPU_DEVICE":            opaque,
	"PGPU_DEVICE":            "unsafe.Pointer",
	"RECT":                   opaque,
}

// cTypes maps the C builtin types that appear without a <ptype>.
var cTypes = map[string]string{
	"void":                        "",
	"char":                        "byte",
	"signed char":                 "int8",
	"unsigned char":               "uint8",
	"short":                       "int16",
	"unsigned short":              "uint16",
	"int":                         "int32",
	"unsigned":                    "uint32",
	"unsigned int":                "uint32",
	"long":                        "int",
	"unsigned long":               "uint",
	"float":                       "float32",
	"double":                      "float64",
	"int8_t":                      "int8",
	"uint8_t":                     "uint8",
	"int16_t":                     "int16",
	"uint16_t":                    "uint16",
	"int32_t":                     "int32",
	"uint32_t":                    "uint32",
	"int64_t":                     "int64",
	"uint64_t":                    "uint64",
	"ptrdiff_t":                   "int",
	"size_t":                      "uint",
	"intptr_t":                    "int",
	"khronos_int8_t":              "int8",
	"khronos_uint8_t":             "uint8",
	"khronos_int16_t":             "int16",
	"khronos_uint16_t":            "uint16",
	"khronos_int32_t":             "int32",
	"khronos_uint32_t":            "uint32",
	"khronos_int64_t":             "int64",
	"khronos_uint64_t":            "uint64",
	"khronos_float_t":             "float32",
	"khronos_intptr_t":            "int",
	"khronos_ssize_t":             "int",
	"khronos_utime_nanoseconds_t": "uint64",
}

// typeMapper turns C declarations into Go types. Registry typedefs that the
// generated file declares are referenced by name; everything else is spelled
// out.
type typeMapper struct {
	declared map[string]string // registry name -> Go identifier
}

// goType converts a declaration such as "const GLchar *const*" to a Go
// type. The empty string means void.
func (m *typeMapper) goType(decl string) (string, error) {
	base, stars := splitDecl(decl)
	if base == "" {
		return "", fmt.Errorf("%w: empty declaration", ErrUnknownType)
	}

	var goBase string
	if ident, ok := m.declared[base]; ok {
		goBase = ident
	} else if t, ok := registryTypes[base]; ok {
		goBase = t
	} else if t, ok := cTypes[base]; ok {
		goBase = t
	} else {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, decl)
	}

	switch goBase {
	case "":
		if stars == 0 {
			return "", nil
		}
		return strings.Repeat("*", stars-1) + "unsafe.Pointer", nil
	case opaque:
		if stars == 0 {
			return "", fmt.Errorf("%w: %q passed by value", ErrUnknownType, decl)
		}
		return strings.Repeat("*", stars-1) + "unsafe.Pointer", nil
	}
	return strings.Repeat("*", stars) + goBase, nil
}

// splitDecl strips qualifiers from a C declaration and returns the base type
// and pointer depth. Array suffixes count as one level of indirection.
func splitDecl(decl string) (string, int) {
	decl = strings.ReplaceAll(decl, "*", " * ")
	var words []string
	stars := 0
	for _, tok := range strings.Fields(decl) {
		switch {
		case tok == "*":
			stars++
		case strings.HasPrefix(tok, "["):
			stars++
		case tok == "const", tok == "struct", tok == "enum", tok == "CONST":
			// qualifiers
		default:
			words = append(words, tok)
		}
	}
	return strings.Join(words, " "), stars
}
