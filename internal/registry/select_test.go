package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func loadTestdata(t *testing.T, name string) *Document {
	t.Helper()
	doc, err := ParseFile("testdata/" + name)
	require.NoError(t, err)
	return doc
}

func enumNames(reg *Registry) []string {
	var names []string
	for _, e := range reg.Enums {
		names = append(names, e.Name)
	}
	return names
}

func cmdNames(reg *Registry) []string {
	var names []string
	for _, c := range reg.Cmds {
		names = append(names, c.Name)
	}
	return names
}

func typeNames(reg *Registry) []string {
	var names []string
	for _, ty := range reg.Types {
		names = append(names, ty.Name)
	}
	return names
}

func findEnum(t *testing.T, reg *Registry, name string) Enum {
	t.Helper()
	for _, e := range reg.Enums {
		if e.Name == name {
			return e
		}
	}
	t.Fatalf("enum %s not selected", name)
	return Enum{}
}

func findCmd(t *testing.T, reg *Registry, name string) Cmd {
	t.Helper()
	for _, c := range reg.Cmds {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("command %s not selected", name)
	return Cmd{}
}

func glFilter(profile, version string, exts ...string) Filter {
	v, err := ParseVersion(version)
	if err != nil {
		panic(err)
	}
	return Filter{Namespace: NamespaceGL, API: "gl", Profile: profile, Version: v, Extensions: exts}
}

func TestSelectCore(t *testing.T) {
	doc := loadTestdata(t, "gl.xml")
	reg, err := doc.Select(glFilter("core", "3.3"))
	require.NoError(t, err)

	require.Equal(t, []string{
		"GL_VERSION_1_0",
		"GL_VERSION_1_5",
		"GL_VERSION_2_0",
		"GL_VERSION_3_1",
		"GL_VERSION_3_2",
	}, reg.Features)
	require.Empty(t, reg.Extensions)

	require.Equal(t, []string{
		"glBindBuffer",
		"glBufferData",
		"glClear",
		"glClearColor",
		"glClientWaitSync",
		"glCreateShader",
		"glGetError",
		"glGetString",
		"glShaderSource",
	}, cmdNames(reg))

	enums := enumNames(reg)
	require.Len(t, enums, 17)
	require.NotContains(t, enums, "GL_QUADS")
	require.NotContains(t, enums, "GL_DEBUG_OUTPUT_SYNCHRONOUS")
	require.Contains(t, enums, "GL_TIMEOUT_IGNORED")
	require.IsIncreasing(t, enums)
}

func TestSelectCompatibility(t *testing.T) {
	doc := loadTestdata(t, "gl.xml")
	reg, err := doc.Select(glFilter("compatibility", "3.3"))
	require.NoError(t, err)

	cmds := cmdNames(reg)
	require.Len(t, cmds, 11)
	require.Contains(t, cmds, "glBegin")
	require.Contains(t, cmds, "glEnd")
	require.Contains(t, enumNames(reg), "GL_QUADS")
}

func TestSelectVersionCutoff(t *testing.T) {
	doc := loadTestdata(t, "gl.xml")

	reg, err := doc.Select(glFilter("core", "1.0"))
	require.NoError(t, err)
	require.Equal(t, []string{"GL_VERSION_1_0"}, reg.Features)
	require.NotContains(t, cmdNames(reg), "glBindBuffer")
	// Removals only apply from the feature that declares them.
	require.Contains(t, cmdNames(reg), "glBegin")

	reg, err = doc.Select(glFilter("core", "4.6"))
	require.NoError(t, err)
	require.Contains(t, reg.Features, "GL_VERSION_4_3")
	require.Contains(t, cmdNames(reg), "glDebugMessageCallback")
	require.Contains(t, enumNames(reg), "GL_BLEND")
}

func TestSelectEnumValues(t *testing.T) {
	doc := loadTestdata(t, "gl.xml")
	reg, err := doc.Select(glFilter("core", "3.3"))
	require.NoError(t, err)

	e := findEnum(t, reg, "GL_TIMEOUT_IGNORED")
	require.Equal(t, "0xFFFFFFFFFFFFFFFF", e.Value)
	require.Equal(t, "ull", e.Type)
	require.Equal(t, "SpecialNumbers", e.Group)

	e = findEnum(t, reg, "GL_COLOR_BUFFER_BIT")
	require.Equal(t, "0x00004000", e.Value)
	require.Equal(t, "AttribMask", e.Group)
}

func TestSelectAPISpecificEnum(t *testing.T) {
	doc := loadTestdata(t, "gl.xml")
	reg, err := doc.Select(Filter{
		Namespace:  NamespaceGL,
		API:        "gles2",
		Version:    Version{Major: 2, Minor: 0},
		Extensions: []string{"GL_EXT_separate_shader_objects"},
	})
	require.NoError(t, err)

	e := findEnum(t, reg, "GL_ACTIVE_PROGRAM_EXT")
	require.Equal(t, "0x8259", e.Value)
	require.Equal(t, "gles2", e.API)
	require.Equal(t, []string{"GL_ES_VERSION_2_0"}, reg.Features)
	require.Equal(t, []string{"GL_EXT_separate_shader_objects"}, reg.Extensions)
}

func TestSelectExtensionRequireByAPI(t *testing.T) {
	doc := loadTestdata(t, "gl.xml")

	reg, err := doc.Select(glFilter("core", "3.3", "GL_KHR_debug"))
	require.NoError(t, err)
	require.Contains(t, cmdNames(reg), "glDebugMessageCallback")
	require.NotContains(t, cmdNames(reg), "glDebugMessageCallbackKHR")
	require.Contains(t, enumNames(reg), "GL_DEBUG_OUTPUT_SYNCHRONOUS")

	reg, err = doc.Select(Filter{
		Namespace:  NamespaceGL,
		API:        "gles2",
		Version:    Version{Major: 2, Minor: 0},
		Extensions: []string{"GL_KHR_debug"},
	})
	require.NoError(t, err)
	require.Contains(t, cmdNames(reg), "glDebugMessageCallbackKHR")
	require.NotContains(t, cmdNames(reg), "glDebugMessageCallback")
	require.Contains(t, enumNames(reg), "GL_DEBUG_OUTPUT_SYNCHRONOUS_KHR")
	// Undefined ptypes are kept for the generator to map.
	require.Contains(t, typeNames(reg), "GLDEBUGPROCKHR")
}

func TestSelectExtensionErrors(t *testing.T) {
	doc := loadTestdata(t, "gl.xml")

	_, err := doc.Select(glFilter("core", "3.3", "GL_NV_nonexistent"))
	require.ErrorIs(t, err, ErrUnknownExtension)

	_, err = doc.Select(glFilter("core", "3.3", "GL_EXT_separate_shader_objects"))
	require.ErrorIs(t, err, ErrUnsupportedExtension)

	// glcore extensions are only available to the core profile.
	_, err = doc.Select(glFilter("compatibility", "3.3", "GL_EXT_texture_sRGB_R8"))
	require.ErrorIs(t, err, ErrUnsupportedExtension)

	reg, err := doc.Select(glFilter("core", "3.3", "GL_EXT_texture_sRGB_R8", "GL_EXT_texture_sRGB_R8"))
	require.NoError(t, err)
	require.Equal(t, []string{"GL_EXT_texture_sRGB_R8"}, reg.Extensions)
	require.Contains(t, enumNames(reg), "GL_SR8_EXT")
}

func TestSelectInvalidFilter(t *testing.T) {
	doc := loadTestdata(t, "gl.xml")
	_, err := doc.Select(Filter{Namespace: NamespaceGL, API: "vulkan"})
	require.ErrorIs(t, err, ErrUnknownAPI)
}

func TestSelectFull(t *testing.T) {
	doc := loadTestdata(t, "gl.xml")
	reg, err := doc.Select(Filter{Namespace: NamespaceGL, API: "gl", Profile: "core", Full: true})
	require.NoError(t, err)

	require.Len(t, reg.Features, 6)
	require.Equal(t, []string{
		"GL_ARB_vertex_buffer_object",
		"GL_EXT_texture_sRGB_R8",
		"GL_KHR_debug",
	}, reg.Extensions)

	cmds := cmdNames(reg)
	require.Contains(t, cmds, "glBegin", "full selections ignore removals")
	require.Contains(t, cmds, "glBindBufferARB")
	require.Contains(t, cmds, "glDebugMessageCallback")
	require.NotContains(t, cmds, "glDebugMessageCallbackKHR")
}

func TestSelectMissingSymbol(t *testing.T) {
	doc := loadTestdata(t, "gl.xml")
	doc.Features[0].Require[0].Command = append(doc.Features[0].Require[0].Command, xmlName{Name: "glFrobnicate"})

	_, err := doc.Select(glFilter("core", "3.3"))
	require.ErrorIs(t, err, ErrMissingSymbol)
	require.Contains(t, err.Error(), "glFrobnicate")
}

func TestSelectTypes(t *testing.T) {
	doc := loadTestdata(t, "gl.xml")
	reg, err := doc.Select(glFilter("core", "3.3"))
	require.NoError(t, err)

	require.Equal(t, []string{
		"GLbitfield",
		"GLboolean",
		"GLchar",
		"GLenum",
		"GLfloat",
		"GLint",
		"GLsizei",
		"GLsizeiptr",
		"GLsync",
		"GLubyte",
		"GLuint",
		"GLuint64",
		"khrplatform",
	}, typeNames(reg))
	require.False(t, reg.HasType("GLDEBUGPROC"))
	require.False(t, reg.HasType("GLfixed"))

	for _, ty := range reg.Types {
		switch ty.Name {
		case "GLsync":
			require.Equal(t, "typedef struct __GLsync *GLsync;", ty.Definition)
		case "GLfloat":
			require.Equal(t, "khrplatform", ty.Requires)
		}
	}
}

func TestSelectBindings(t *testing.T) {
	doc := loadTestdata(t, "gl.xml")
	reg, err := doc.Select(glFilter("core", "3.3"))
	require.NoError(t, err)

	c := findCmd(t, reg, "glGetString")
	require.Equal(t, "const GLubyte *", c.Proto.Type)
	require.Equal(t, "GLubyte", c.Proto.PType)
	require.Equal(t, "String", c.Proto.Group)
	require.Equal(t, "GLenum", c.Params[0].Type)
	require.Equal(t, "name", c.Params[0].Name)

	c = findCmd(t, reg, "glShaderSource")
	require.Len(t, c.Params, 4)
	require.Equal(t, "const GLchar *const*", c.Params[2].Type)
	require.Equal(t, "count", c.Params[2].Len)

	c = findCmd(t, reg, "glBufferData")
	require.Equal(t, "const void *", c.Params[2].Type)
	require.Empty(t, c.Params[2].PType)

	c = findCmd(t, reg, "glClear")
	require.Equal(t, "void", c.Proto.Type)
}

func TestSelectAliases(t *testing.T) {
	doc := loadTestdata(t, "gl.xml")
	reg, err := doc.Select(glFilter("core", "4.6", "GL_ARB_vertex_buffer_object"))
	require.NoError(t, err)

	require.Equal(t, []string{"glBindBufferARB"}, reg.Aliases["glBindBuffer"])
	require.Equal(t, []string{"glBindBuffer"}, reg.Aliases["glBindBufferARB"])
	require.Equal(t, []string{"glDebugMessageCallbackKHR"}, reg.Aliases["glDebugMessageCallback"])
	require.Equal(t, "glBindBuffer", findCmd(t, reg, "glBindBufferARB").Alias)
	require.NotContains(t, reg.Aliases, "glClear")
}

func TestSelectGLX(t *testing.T) {
	doc := loadTestdata(t, "glx.xml")
	reg, err := doc.Select(Filter{
		Namespace:  NamespaceGLX,
		API:        "glx",
		Version:    Version{Major: 1, Minor: 4},
		Extensions: []string{"GLX_ARB_get_proc_address"},
	})
	require.NoError(t, err)

	require.Equal(t, []string{"GLX_VERSION_1_0", "GLX_VERSION_1_3", "GLX_VERSION_1_4"}, reg.Features)
	require.Equal(t, []string{
		"glXChooseVisual",
		"glXCreateContext",
		"glXCreatePbuffer",
		"glXGetProcAddress",
		"glXGetProcAddressARB",
		"glXMakeCurrent",
		"glXSwapBuffers",
	}, cmdNames(reg))
	require.Equal(t, []string{"glXGetProcAddressARB"}, reg.Aliases["glXGetProcAddress"])
	require.Contains(t, typeNames(reg), "Display")
	require.Contains(t, typeNames(reg), "GLXFBConfig")

	// String valued enums are kept with their quotes.
	e := findEnum(t, reg, "GLX_EXTENSION_NAME")
	require.Equal(t, `"GLX"`, e.Value)
}

func TestSelectWGL(t *testing.T) {
	doc := loadTestdata(t, "wgl.xml")
	reg, err := doc.Select(Filter{
		Namespace:  NamespaceWGL,
		API:        "wgl",
		Version:    Version{Major: 1, Minor: 0},
		Extensions: []string{"WGL_ARB_create_context"},
	})
	require.NoError(t, err)

	require.Equal(t, []string{
		"ChoosePixelFormat",
		"SwapBuffers",
		"wglCreateContext",
		"wglCreateContextAttribsARB",
		"wglDescribeLayerPlane",
		"wglGetProcAddress",
		"wglMakeCurrent",
		"wglUseFontOutlines",
	}, cmdNames(reg))
	require.Contains(t, typeNames(reg), "LPGLYPHMETRICSFLOAT")
	require.Contains(t, enumNames(reg), "ERROR_INVALID_VERSION_ARB")
	require.Equal(t, []string{"WGL_ARB_create_context"}, reg.Extensions)
}
