package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/interview"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 4 << 20
)

// Client представляет клиент REST API тренажёра интервью
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	log     *zap.Logger
	metrics *metrics.Metrics
}

// Option настраивает Client
type Option func(*Client)

// WithHTTPClient задает HTTP клиент (для тестов и прокси)
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithToken задает Bearer токен
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout задает таймаут одного запроса
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRateLimit ограничивает частоту исходящих запросов
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New создает клиент API
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: defaultTimeout,
		limiter: rate.NewLimiter(rate.Inf, 0),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSession создает сессию интервью и получает вопросы
func (c *Client) CreateSession(ctx context.Context, req interview.CreateSessionRequest) (*interview.CreatedSession, error) {
	switch {
	case req.UserID == "":
		return nil, NewValidationError("userId", "обязательное поле")
	case req.Industry == "":
		return nil, NewValidationError("industry", "обязательное поле")
	case req.JobRole == "":
		return nil, NewValidationError("jobRole", "обязательное поле")
	}

	var created interview.CreatedSession
	if err := c.do(ctx, "create_session", http.MethodPost, "/interview-session", req, &created); err != nil {
		return nil, err
	}

	if created.SessionID == "" {
		return nil, &NetworkError{Op: "create_session", Cause: errors.New("ответ без sessionId")}
	}

	return &created, nil
}

// SubmitAnswer ставит ответ в очередь оценки и не ждет результата
func (c *Client) SubmitAnswer(ctx context.Context, sub interview.AnswerSubmission) (*interview.SubmissionAck, error) {
	var ack interview.SubmissionAck
	if err := c.do(ctx, "submit_answer", http.MethodPost, "/interview-answer", sub, &ack); err != nil {
		return nil, err
	}

	if ack.ID == "" {
		return nil, &NetworkError{Op: "submit_answer", Cause: errors.New("ответ без id")}
	}
	if ack.Status == "" {
		ack.Status = interview.StatusPending
	}

	return &ack, nil
}

// GetAnswer получает один ответ, с полным содержимым оценки или без него
func (c *Client) GetAnswer(ctx context.Context, id string, loadContent bool) (*interview.Answer, error) {
	if id == "" {
		return nil, NewValidationError("id", "обязательное поле")
	}

	path := "/interview-answer/" + url.PathEscape(id) + "?loadContent=" + strconv.FormatBool(loadContent)

	var answer interview.Answer
	if err := c.do(ctx, "get_answer", http.MethodGet, path, nil, &answer); err != nil {
		return nil, err
	}

	return &answer, nil
}

// BatchAnswers получает полное содержимое нескольких ответов одним запросом
func (c *Client) BatchAnswers(ctx context.Context, ids []string) ([]interview.Answer, error) {
	if len(ids) == 0 {
		return []interview.Answer{}, nil
	}

	body := struct {
		AnswerIDs []string `json:"answerIds"`
	}{AnswerIDs: ids}

	var answers []interview.Answer
	if err := c.do(ctx, "batch_answers", http.MethodPost, "/interview-answer/batch", body, &answers); err != nil {
		return nil, err
	}

	return answers, nil
}

// Synthesize запрашивает озвучивание текста и возвращает адрес аудио
func (c *Client) Synthesize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", NewValidationError("text", "текст не может быть пустым")
	}

	body := struct {
		Text string `json:"text"`
	}{Text: text}

	var resp struct {
		AudioURL string `json:"audioUrl"`
	}
	if err := c.do(ctx, "text_to_speech", http.MethodPost, "/text-to-speech", body, &resp); err != nil {
		return "", err
	}

	if resp.AudioURL == "" {
		return "", &NetworkError{Op: "text_to_speech", Cause: errors.New("ответ без audioUrl")}
	}

	return c.resolve(resp.AudioURL), nil
}

// resolve превращает относительный адрес аудио в абсолютный
func (c *Client) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Field   string `json:"field"`
}

// do выполняет запрос и отображает ответ на таксономию ошибок пакета
func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return c.contextError(ctx, op, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: ошибка сериализации запроса: %w", op, err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: ошибка создания запроса: %w", op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveAPICall(op, "error", time.Since(start))
		c.log.Debug("запрос к API не выполнен",
			zap.String("op", op), zap.String("request_id", requestID), zap.Error(err))
		return c.transportError(ctx, op, err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveAPICall(op, strconv.Itoa(resp.StatusCode), time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.transportError(ctx, op, err)
	}

	c.log.Debug("ответ API",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(op, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Cause: fmt.Errorf("ошибка парсинга ответа: %w", err)}
	}

	return nil
}

func statusError(op string, status int, data []byte) error {
	var eb errorBody
	_ = json.Unmarshal(data, &eb)
	message := eb.Message
	if message == "" {
		message = eb.Error
	}
	if message == "" {
		message = http.StatusText(status)
	}

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return NewValidationError(eb.Field, message)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s: %s: %w", op, message, ErrUnauthorized)
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %s: %w", op, message, ErrNotFound)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%s: HTTP %d: %w", op, status, ErrRequestTimeout)
	default:
		return &NetworkError{
			Op:         op,
			StatusCode: status,
			Cause:      errors.New(message),
			Retryable:  status >= 500 || status == http.StatusTooManyRequests,
		}
	}
}

// transportError различает отмену вызывающим, таймаут и сбой сети
func (c *Client) transportError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return c.contextError(ctx, op, ctx.Err())
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w", op, ErrRequestTimeout)
	}

	return &NetworkError{Op: op, Cause: err, Retryable: true}
}

func (c *Client) contextError(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrRequestTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}
