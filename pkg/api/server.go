// Package api provides the REST API server for als2midi
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/james-see/als2midi/pkg/converter"
	"github.com/james-see/als2midi/pkg/liveset"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title als2midi API
// @version 1.0
// @description API for converting Ableton Live sets to MIDI files
// @host localhost:8080
// @BasePath /api/v1

// DefaultPort is the port the server listens on unless told otherwise
const DefaultPort = 8080

// maxUpload bounds the size of an uploaded Live set
const maxUpload = 64 << 20

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	return NewRouter().Run(fmt.Sprintf(":%d", port))
}

// DocsURL returns the local address of the swagger UI
func DocsURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/swagger/index.html", port)
}

// NewRouter builds the gin engine with all routes registered
func NewRouter() *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert/als2midi", handleALSToMIDI)
		v1.POST("/inspect", handleInspect)
		v1.GET("/formats", listFormats)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "als2midi",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"als", "midi"},
		"conversions": converter.GetSupportedConversions(),
	})
}

// handleALSToMIDI godoc
// @Summary Convert a Live set to MIDI
// @Description Upload an .als file and receive a MIDI file
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/midi
// @Param file formData file true "Live set to convert"
// @Param quantum query number false "Automation resolution in beats (default: 0.015625)"
// @Param ppq query int false "Ticks per quarter note (default: 480)"
// @Param separate_channels query bool false "One MIDI channel per track (default: true)"
// @Param volume query bool false "Export track volume as CC 7 (default: true)"
// @Param pan query bool false "Export track pan as CC 10 (default: true)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/als2midi [post]
func handleALSToMIDI(c *gin.Context) {
	conv, data, name, ok := prepare(c)
	if !ok {
		return
	}

	res, err := conv.ConvertBytes(c.Request.Context(), data, name)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.mid", name))
	c.Header("X-Tracks", strconv.Itoa(res.Tracks))
	c.Header("X-Notes", strconv.Itoa(res.Notes))
	c.Data(http.StatusOK, "audio/midi", res.Data)
}

// handleInspect godoc
// @Summary Inspect a Live set
// @Description Upload an .als file and receive a summary of its tracks, notes and automation curves
// @Tags info
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Live set to inspect"
// @Param quantum query number false "Automation resolution in beats (default: 0.015625)"
// @Success 200 {object} converter.SetSummary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/inspect [post]
func handleInspect(c *gin.Context) {
	conv, data, name, ok := prepare(c)
	if !ok {
		return
	}

	if f := converter.DetectFormatFromContent(data); f != converter.FormatALS {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("expected a Live set, got %s", f)})
		return
	}
	set, err := liveset.Read(bytes.NewReader(data), name)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, conv.Describe(set))
}

// prepare reads the uploaded file and builds a converter from the query.
// It writes the error response itself and reports false on failure.
func prepare(c *gin.Context) (*converter.Converter, []byte, string, bool) {
	opts, err := optionsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, "", false
	}
	conv, err := converter.New(opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, "", false
	}

	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, nil, "", false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, nil, "", false
	}
	if len(data) > maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return nil, nil, "", false
	}

	name := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	if name == "" || name == "." {
		name = "converted"
	}
	return conv, data, name, true
}

func optionsFromQuery(c *gin.Context) (converter.Options, error) {
	opts := converter.DefaultOptions()

	if v := c.Query("quantum"); v != "" {
		q, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid quantum %q", v)
		}
		opts.Quantum = q
	}
	if v := c.Query("ppq"); v != "" {
		ppq, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return opts, fmt.Errorf("invalid ppq %q", v)
		}
		opts.TicksPerQuarter = uint16(ppq)
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{"separate_channels", &opts.SeparateChannels},
		{"volume", &opts.ExportVolume},
		{"pan", &opts.ExportPan},
		{"include_disabled", &opts.IncludeDisabled},
	}
	for _, f := range flags {
		v := c.Query(f.key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid %s %q", f.key, v)
		}
		*f.dst = b
	}
	return opts, nil
}

func statusFor(err error) int {
	if errors.Is(err, converter.ErrUnsupportedFormat) {
		return http.StatusUnsupportedMediaType
	}
	return http.StatusUnprocessableEntity
}
