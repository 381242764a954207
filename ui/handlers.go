package ui

import (
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"optiscope/adapters/report"
	"optiscope/domain/optimization"
	"optiscope/internal/analysis"
	"optiscope/internal/errors"
)

// multipart bodies up to this size stay in memory; larger parts spill to temp files
const formMemory = 8 << 20

type indexPage struct {
	Params   optimization.Params
	MaxBytes int64
	Error    string
}

type reportPage struct {
	Analysis *analysis.Analysis
	Report   template.HTML
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "index.html", indexPage{
		Params:   a.config.Analysis.Params(),
		MaxBytes: a.config.Upload.MaxBytes,
	})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleAnalyzeAPI(w http.ResponseWriter, r *http.Request) {
	result, err := a.analyzeUpload(w, r)
	if err != nil {
		status := statusFor(err)
		writeJSON(w, status, map[string]string{
			"error": err.Error(),
			"code":  errors.GetCode(err),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := report.WriteJSON(w, result); err != nil {
		a.logger.Error("run %s: %v", result.RunID, err)
	}
}

func (a *App) handleAnalyzePage(w http.ResponseWriter, r *http.Request) {
	result, err := a.analyzeUpload(w, r)
	if err != nil {
		a.renderTemplate(w, statusFor(err), "index.html", indexPage{
			Params:   a.config.Analysis.Params(),
			MaxBytes: a.config.Upload.MaxBytes,
			Error:    err.Error(),
		})
		return
	}

	a.renderTemplate(w, http.StatusOK, "report.html", reportPage{
		Analysis: result,
		// Cell text is escaped while the Markdown is built; links and raw HTML are not rendered.
		Report: template.HTML(report.HTML(result)),
	})
}

// analyzeUpload reads the multipart form, loads the file and runs one analysis. At most
// Server.MaxConcurrent analyses run at once; a request that cannot get a slot before its
// context ends fails with BUSY.
func (a *App) analyzeUpload(w http.ResponseWriter, r *http.Request) (*analysis.Analysis, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.Upload.MaxBytes)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.InvalidInput(fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
		}
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "invalid multipart form"))
	}
	defer r.MultipartForm.RemoveAll()

	params, err := parseParams(r, a.config.Analysis.Params())
	if err != nil {
		return nil, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.InvalidInput("missing file field")
	}
	defer file.Close()

	if err := a.limiter.Acquire(r.Context(), 1); err != nil {
		a.logger.Warn("analysis of %s rejected: %v", header.Filename, err)
		return nil, errors.Busy("too many analyses in progress, retry later")
	}
	defer a.limiter.Release(1)

	table, err := a.loader.LoadReader(header.Filename, file)
	if err != nil {
		wrapped := errors.Wrapf(err, "cannot read %s", header.Filename)
		if errors.GetCode(wrapped) == errors.CodeInternalError {
			wrapped = errors.WithCode(errors.CodeInvalidInput, wrapped)
		}
		return nil, wrapped
	}

	result, err := a.analyzer.Run(table, params)
	if err != nil {
		return nil, errors.Wrapf(err, "analysis of %s failed", header.Filename)
	}
	return result, nil
}

// parseParams reads min_profit, max_drawdown and top_n, keeping defaults for absent fields
func parseParams(r *http.Request, defaults optimization.Params) (optimization.Params, error) {
	p := defaults
	if v := strings.TrimSpace(r.FormValue("min_profit")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, errors.InvalidInput(fmt.Sprintf("min_profit: %q is not a number", v))
		}
		p.MinProfit = f
	}
	if v := strings.TrimSpace(r.FormValue("max_drawdown")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, errors.InvalidInput(fmt.Sprintf("max_drawdown: %q is not a number", v))
		}
		p.MaxDrawdown = f
	}
	if v := strings.TrimSpace(r.FormValue("top_n")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, errors.InvalidInput(fmt.Sprintf("top_n: %q is not an integer", v))
		}
		p.TopN = n
	}
	return p, nil
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeUnsupportedFormat, errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeMissingColumn:
		return http.StatusUnprocessableEntity
	case errors.CodeBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
