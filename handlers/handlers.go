package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"querydraft/db"
	"querydraft/models"
	"querydraft/service"
	"querydraft/session"
	"querydraft/validation"
)

// @title           Query Draft Assistant API
// @version         1.0
// @description     Conversational query drafting: describe what you need, review the generated query, run it, confirm it, or undo.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:9090
// @BasePath  /

// @schemes   http https

// connectionChecker is implemented by executors backed by a real database.
type connectionChecker interface {
	IsConnected(ctx context.Context) bool
	Driver() string
}

type Handlers struct {
	sessions    *session.Manager
	db          *db.DB
	results     *service.ResultsStorage
	executor    session.Executor
	hub         *Hub
	sqlFilesDir string
}

func New(sessions *session.Manager, database *db.DB, results *service.ResultsStorage, executor session.Executor, hub *Hub, sqlFilesDir string) *Handlers {
	return &Handlers{
		sessions:    sessions,
		db:          database,
		results:     results,
		executor:    executor,
		hub:         hub,
		sqlFilesDir: sqlFilesDir,
	}
}

// statusFor maps session and collaborator errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		genErr  *session.GenerationError
		execErr *session.ExecutionError
		fbErr   *session.FeedbackError
	)
	switch {
	case errors.Is(err, validation.ErrUnintelligible),
		errors.Is(err, session.ErrInvalidDialect):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrPositionOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, session.ErrGenerating),
		errors.Is(err, session.ErrNotResponse),
		errors.Is(err, session.ErrNotRequest),
		errors.Is(err, session.ErrNothingToUndo),
		errors.Is(err, session.ErrStale):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoResult):
		return http.StatusUnprocessableEntity
	case errors.As(err, &genErr), errors.As(err, &execErr), errors.As(err, &fbErr):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		log.Error().Err(err).Str("component", "handlers").Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// session resolves the :id path parameter. It writes the error response and
// returns nil when the session does not exist.
func (h *Handlers) session(c *gin.Context) *session.Controller {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil
	}
	return sess
}

// position parses the :pos path parameter.
func position(c *gin.Context) (int, bool) {
	pos, err := strconv.Atoi(c.Param("pos"))
	if err != nil || pos < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Position must be a non-negative integer"})
		return 0, false
	}
	return pos, true
}

// bindOptionalJSON binds the request body into v, accepting an empty body.
func bindOptionalJSON(c *gin.Context, v interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// wantWait combines the body's wait flag with a ?wait= query override.
func wantWait(c *gin.Context, body *bool) (bool, error) {
	if q := c.Query("wait"); q != "" {
		b, err := strconv.ParseBool(q)
		if err != nil {
			return false, err
		}
		return b, nil
	}
	return models.ShouldWait(body), nil
}
