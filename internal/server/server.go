package server

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/adnsv/tabxl/internal/logger"
	"github.com/adnsv/tabxl/table"
	"github.com/adnsv/tabxl/xl"
	"github.com/adnsv/tabxl/xlsread"
)

type Options struct {
	AppName        string
	MaxUploadBytes int64

	// ReaderConfig is used for every import. When nil, imports are shaped
	// by the "header" and "types" query parameters.
	ReaderConfig *xlsread.Config

	// CSVEncoding applies to CSV uploads unless ReaderConfig names one.
	CSVEncoding string
}

type Server struct {
	Echo *echo.Echo
	opts Options
}

func New(opts Options) *Server {
	if opts.AppName == "" {
		opts.AppName = "tabxl"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if rc := opts.ReaderConfig; rc != nil && rc.CSVEncoding == "" && opts.CSVEncoding != "" {
		cfg := *rc
		cfg.CSVEncoding = opts.CSVEncoding
		opts.ReaderConfig = &cfg
	}
	s := &Server{Echo: echo.New(), opts: opts}
	s.Echo.HideBanner = true
	s.RegisterMiddlewares()
	s.RegisterRoutes()
	return s
}

func (s *Server) RegisterMiddlewares() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestID())
	s.Echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := logger.WithLogger(req.Context(), map[string]any{
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				"path":       req.URL.Path,
			})
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	})
}

func (s *Server) RegisterRoutes() {
	s.Echo.POST("/export", s.ExportHandler)
	s.Echo.POST("/import", s.ImportHandler)
}

func (s *Server) Run(addr string) error {
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func responseError(c echo.Context, status int, msg string, err error) error {
	logger.ErrorLog(c.Request().Context(), msg, err)
	return c.JSON(status, APIResponse{Success: false, Message: msg, Error: err.Error()})
}

// ExportHandler handles POST /export. The body is a JSON data set; the
// response is the workbook.
func (s *Server) ExportHandler(c echo.Context) error {
	var ds table.DataSet
	if err := c.Bind(&ds); err != nil {
		return responseError(c, http.StatusBadRequest, "Invalid data set", err)
	}

	var bb bytes.Buffer
	if err := xl.WriteDataSet(&bb, &ds, s.opts.AppName); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, xl.ErrMissingInput) {
			status = http.StatusBadRequest
		}
		return responseError(c, status, "Failed to write workbook", err)
	}
	logger.InfoLog(c.Request().Context(), "exported %d tables, %d bytes", len(ds.Tables), bb.Len())

	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": downloadName(ds.Name)}))
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(bb.Len()))
	return c.Blob(http.StatusOK, xl.ContentType, bb.Bytes())
}

// ImportHandler handles POST /import with a multipart "file" field and
// responds with the data set as JSON.
func (s *Server) ImportHandler(c echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, s.opts.MaxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		return responseError(c, http.StatusBadRequest, "Missing upload", err)
	}
	f, err := fh.Open()
	if err != nil {
		return responseError(c, http.StatusBadRequest, "Unreadable upload", err)
	}
	defer f.Close()

	cfg, err := s.readerConfig(c)
	if err != nil {
		return responseError(c, http.StatusBadRequest, "Invalid query", err)
	}

	var ds *table.DataSet
	ext := filepath.Ext(fh.Filename)
	if strings.EqualFold(ext, ".csv") {
		ds, err = xlsread.ReadCSV(f, strings.TrimSuffix(filepath.Base(fh.Filename), ext), cfg)
	} else {
		ds, err = xlsread.Read(f, cfg)
	}
	if err != nil {
		return responseError(c, http.StatusUnprocessableEntity, "Failed to read workbook", err)
	}
	logger.InfoLog(req.Context(), "imported %s: %d tables", fh.Filename, len(ds.Tables))
	return c.JSON(http.StatusOK, ds)
}

func (s *Server) readerConfig(c echo.Context) (*xlsread.Config, error) {
	if s.opts.ReaderConfig != nil {
		return s.opts.ReaderConfig, nil
	}
	header, err := queryBool(c, "header")
	if err != nil {
		return nil, err
	}
	types, err := queryBool(c, "types")
	if err != nil {
		return nil, err
	}
	return &xlsread.Config{
		UseColumnDataType: types,
		CSVEncoding:       s.opts.CSVEncoding,
		ConfigureTable: func(string) xlsread.TableConfig {
			tc := xlsread.DefaultTableConfig()
			tc.UseHeaderRow = header
			return tc
		},
	}, nil
}

func queryBool(c echo.Context, name string) (bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func downloadName(name string) string {
	if name == "" {
		name = "workbook"
	}
	return name + ".xlsx"
}
