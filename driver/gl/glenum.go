// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

// Enum is the type of GL enumerated values.
type Enum uint32

// Enumerated values, as defined by the OpenGL and
// OpenGL ES specifications.
const (
	ALL_BARRIER_BITS                          = 0xffffffff
	BACK                                      = 0x0405
	BGRA                                      = 0x80e1
	COLOR_ATTACHMENT0                         = 0x8ce0
	COLOR_BUFFER_BIT                          = 0x4000
	CONTEXT_LOST                              = 0x0507
	DEBUG_SEVERITY_NOTIFICATION               = 0x826b
	DEBUG_SOURCE_APPLICATION                  = 0x824a
	DEBUG_TYPE_MARKER                         = 0x8268
	DEPTH24_STENCIL8                          = 0x88f0
	DEPTH_ATTACHMENT                          = 0x8d00
	DEPTH_BUFFER_BIT                          = 0x100
	DEPTH_COMPONENT                           = 0x1902
	DEPTH_COMPONENT16                         = 0x81a5
	DEPTH_COMPONENT32F                        = 0x8cac
	DEPTH_STENCIL                             = 0x84f9
	DEPTH_STENCIL_ATTACHMENT                  = 0x821a
	DRAW_FRAMEBUFFER                          = 0x8ca9
	EXTENSIONS                                = 0x1f03
	FLOAT                                     = 0x1406
	FRAMEBUFFER                               = 0x8d40
	FRAMEBUFFER_BARRIER_BIT                   = 0x400
	FRAMEBUFFER_BINDING                       = 0x8ca6
	FRAMEBUFFER_COMPLETE                      = 0x8cd5
	FRAMEBUFFER_INCOMPLETE_ATTACHMENT         = 0x8cd6
	FRAMEBUFFER_INCOMPLETE_DIMENSIONS         = 0x8cd9
	FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER        = 0x8cdb
	FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT = 0x8cd7
	FRAMEBUFFER_INCOMPLETE_MULTISAMPLE        = 0x8d56
	FRAMEBUFFER_INCOMPLETE_READ_BUFFER        = 0x8cdc
	FRAMEBUFFER_SRGB                          = 0x8db9
	FRAMEBUFFER_UNDEFINED                     = 0x8219
	FRAMEBUFFER_UNSUPPORTED                   = 0x8cdd
	INVALID_ENUM                              = 0x0500
	INVALID_FRAMEBUFFER_OPERATION             = 0x0506
	INVALID_OPERATION                         = 0x0502
	INVALID_VALUE                             = 0x0501
	LINEAR                                    = 0x2601
	MAX_ARRAY_TEXTURE_LAYERS                  = 0x88ff
	MAX_COLOR_ATTACHMENTS                     = 0x8cdf
	MAX_CUBE_MAP_TEXTURE_SIZE                 = 0x851c
	MAX_DRAW_BUFFERS                          = 0x8824
	MAX_FRAMEBUFFER_HEIGHT                    = 0x9316
	MAX_FRAMEBUFFER_LAYERS                    = 0x9317
	MAX_FRAMEBUFFER_WIDTH                     = 0x9315
	MAX_RENDERBUFFER_SIZE                     = 0x84e8
	MAX_SAMPLES                               = 0x8d57
	MAX_TEXTURE_SIZE                          = 0x0d33
	MAX_VIEWPORT_DIMS                         = 0x0d3a
	NEAREST                                   = 0x2600
	NONE                                      = 0
	NO_ERROR                                  = 0
	NUM_EXTENSIONS                            = 0x821d
	OUT_OF_MEMORY                             = 0x0505
	PACK_ALIGNMENT                            = 0x0d05
	PACK_ROW_LENGTH                           = 0x0d02
	READ_FRAMEBUFFER                          = 0x8ca8
	READ_FRAMEBUFFER_BINDING                  = 0x8caa
	RENDERBUFFER                              = 0x8d41
	RENDERBUFFER_BINDING                      = 0x8ca7
	RENDERER                                  = 0x1f01
	RGB10_A2                                  = 0x8059
	RGBA                                      = 0x1908
	RGBA32UI                                  = 0x8d70
	RGBA8                                     = 0x8058
	RGBA_INTEGER                              = 0x8d99
	SCISSOR_TEST                              = 0x0c11
	SRGB8_ALPHA8                              = 0x8c43
	STENCIL_ATTACHMENT                        = 0x8d20
	STENCIL_BUFFER_BIT                        = 0x400
	STENCIL_INDEX                             = 0x1901
	STENCIL_INDEX8                            = 0x8d48
	STENCIL_TEST                              = 0x0b90
	TEXTURE                                   = 0x1702
	TEXTURE_2D                                = 0x0de1
	TEXTURE_2D_ARRAY                          = 0x8c1a
	TEXTURE_2D_MULTISAMPLE                    = 0x9100
	TEXTURE_CUBE_MAP                          = 0x8513
	TEXTURE_CUBE_MAP_POSITIVE_X               = 0x8515
	UNPACK_ALIGNMENT                          = 0x0cf5
	UNSIGNED_BYTE                             = 0x1401
	UNSIGNED_INT                              = 0x1405
	UNSIGNED_INT_24_8                         = 0x84fa
	UNSIGNED_INT_2_10_10_10_REV               = 0x8368
	UNSIGNED_SHORT                            = 0x1403
	VENDOR                                    = 0x1f00
	VERSION                                   = 0x1f02
	VIEWPORT                                  = 0x0ba2
)
