package feishu

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/ports"
	"NewsCatcher/pkg/textutil"
	"NewsCatcher/pkg/timeutil"
)

const (
	batchThreshold = 30
	batchLabels    = 5
	titleWidth     = 80
)

// ErrRejected is returned when the webhook answers with a non-zero code.
var ErrRejected = errors.New("feishu webhook rejected message")

// Notifier sends digests to a Feishu group through a custom bot webhook.
type Notifier struct {
	webhookURL string
	secret     string
	client     *http.Client
	logger     *slog.Logger
	now        func() time.Time
	pause      time.Duration
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the webhook and optional signing secret.
func NewNotifier(webhookURL, secret string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Notifier{
		webhookURL: webhookURL,
		secret:     secret,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		now:        time.Now,
		pause:      time.Second,
	}
}

// PublishDigest posts the report as interactive cards, one per batch of labels.
// A rejected card is retried once as a plain post message. A failure after
// earlier batches went out is returned as *ports.PartialDeliveryError.
func (n *Notifier) PublishDigest(ctx context.Context, report domain.Report) error {
	if n.webhookURL == "" || n.client == nil {
		return fmt.Errorf("feishu notifier misconfigured")
	}

	batches := Batches(report)
	var delivered []string
	for i, groups := range batches {
		if i > 0 {
			if err := timeutil.Sleep(ctx, n.pause); err != nil {
				return partial(delivered, err)
			}
		}

		title := cardTitle(report, i, len(batches))
		err := n.send(ctx, buildCard(title, groups, report))
		if err != nil {
			n.logger.Warn("card rejected, falling back to post", "batch", i+1, "error", err)
			if err := n.send(ctx, buildPost(title, groups)); err != nil {
				return partial(delivered, fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err))
			}
		}
		for _, g := range groups {
			delivered = append(delivered, g.Label)
		}
	}

	n.logger.Info("digest delivered", "batches", len(batches), "items", report.TotalItems())
	return nil
}

// partial wraps err so callers can tell which labels already went out.
func partial(delivered []string, err error) error {
	if len(delivered) == 0 {
		return err
	}
	return &ports.PartialDeliveryError{Delivered: delivered, Err: err}
}

// SendText posts a plain text message, used to check the webhook wiring.
func (n *Notifier) SendText(ctx context.Context, text string) error {
	if n.webhookURL == "" {
		return fmt.Errorf("feishu notifier misconfigured")
	}
	return n.send(ctx, map[string]any{
		"msg_type": "text",
		"content":  map[string]string{"text": text},
	})
}

// Batches splits large reports into chunks of labels to stay under card size limits.
func Batches(report domain.Report) [][]domain.LabelGroup {
	if report.TotalItems() <= batchThreshold || len(report.Groups) <= batchLabels {
		return [][]domain.LabelGroup{report.Groups}
	}
	var out [][]domain.LabelGroup
	for start := 0; start < len(report.Groups); start += batchLabels {
		end := min(start+batchLabels, len(report.Groups))
		out = append(out, report.Groups[start:end])
	}
	return out
}

// Sign computes the webhook signature for a unix timestamp.
func Sign(timestamp int64, secret string) string {
	key := strconv.FormatInt(timestamp, 10) + "\n" + secret
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(nil)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type webhookResponse struct {
	Code          *int   `json:"code"`
	Msg           string `json:"msg"`
	StatusCode    *int   `json:"StatusCode"`
	StatusMessage string `json:"StatusMessage"`
}

func (r webhookResponse) ok() bool {
	return (r.Code != nil && *r.Code == 0) || (r.StatusCode != nil && *r.StatusCode == 0)
}

func (n *Notifier) send(ctx context.Context, payload map[string]any) error {
	if n.secret != "" {
		ts := n.now().Unix()
		payload["timestamp"] = strconv.FormatInt(ts, 10)
		payload["sign"] = Sign(ts, n.secret)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal feishu payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feishu error %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var decoded webhookResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decode feishu response: %w", err)
	}
	if !decoded.ok() {
		return fmt.Errorf("%w: %s%s", ErrRejected, decoded.Msg, decoded.StatusMessage)
	}
	return nil
}

func cardTitle(report domain.Report, batch, total int) string {
	title := fmt.Sprintf("📊 产业资讯日报 %s", report.StartedAt.Format("2006-01-02"))
	if total > 1 {
		title += fmt.Sprintf("（%d/%d）", batch+1, total)
	}
	return title
}

func buildCard(title string, groups []domain.LabelGroup, report domain.Report) map[string]any {
	elements := make([]any, 0, len(groups)*2+1)
	for i, g := range groups {
		if i > 0 {
			elements = append(elements, map[string]any{"tag": "hr"})
		}
		elements = append(elements, map[string]any{
			"tag":  "div",
			"text": map[string]string{"tag": "lark_md", "content": groupMarkdown(g)},
		})
	}
	elements = append(elements, map[string]any{"tag": "hr"}, map[string]any{
		"tag": "note",
		"elements": []map[string]string{{
			"tag":     "plain_text",
			"content": fmt.Sprintf("共 %d 条 · %s · run %s", report.TotalItems(), report.StartedAt.Format("15:04"), report.RunID),
		}},
	})

	return map[string]any{
		"msg_type": "interactive",
		"card": map[string]any{
			"config": map[string]bool{"wide_screen_mode": true},
			"header": map[string]any{
				"title":    map[string]string{"tag": "plain_text", "content": title},
				"template": "red",
			},
			"elements": elements,
		},
	}
}

func groupMarkdown(g domain.LabelGroup) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s %s**（%d条）\n", g.Glyph, g.Label, len(g.Items))
	if g.Summary != "" {
		sb.WriteString(g.Summary)
		sb.WriteString("\n")
	}
	for _, ev := range g.Funding {
		fmt.Fprintf(&sb, "[%s](%s)\n", ev.Highlight(), ev.URL)
	}
	for _, item := range g.Items {
		fmt.Fprintf(&sb, "· [%s](%s) %s\n", textutil.TruncateWidth(item.Title, titleWidth), item.URL, item.Source)
	}
	return strings.TrimSpace(sb.String())
}

func buildPost(title string, groups []domain.LabelGroup) map[string]any {
	var lines [][]map[string]string
	for _, g := range groups {
		lines = append(lines, []map[string]string{{"tag": "text", "text": fmt.Sprintf("%s %s", g.Glyph, g.Label)}})
		for _, ev := range g.Funding {
			lines = append(lines, []map[string]string{{"tag": "a", "text": ev.Highlight(), "href": ev.URL}})
		}
		for _, item := range g.Items {
			lines = append(lines, []map[string]string{{"tag": "a", "text": textutil.TruncateWidth(item.Title, titleWidth), "href": item.URL}})
		}
	}
	return map[string]any{
		"msg_type": "post",
		"content": map[string]any{
			"post": map[string]any{
				"zh_cn": map[string]any{"title": title, "content": lines},
			},
		},
	}
}
