package logic

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"text/template"
	"time"

	"github.com/soracom/connectivity-benchmark/internal/model"
	"github.com/soracom/connectivity-benchmark/pkg/logger"
)

const DefaultTemplate = "cellbench {{.State}} for ICCID {{.ICCID}} IMSI {{.IMSI}}: " +
	"registered in {{.RegistrationLatency}} ms, online in {{.OnlineLatency}} ms" +
	"{{if .Network}} via {{.Network}}{{end}}{{if .Error}} ({{.Error}}){{end}}"

const telegramAPI = "https://api.telegram.org"

type NotifierConfig struct {
	SlackURL       string
	TelegramToken  string
	TelegramChatID string
	// Template is a text/template over model.Run; DefaultTemplate when empty.
	Template string
}

// Notifier posts finished runs to the configured chat webhooks.
type Notifier struct {
	config      NotifierConfig
	client      *http.Client
	telegramAPI string
}

func NewNotifier(config NotifierConfig) *Notifier {
	if config.Template == "" {
		config.Template = DefaultTemplate
	}
	return &Notifier{
		config:      config,
		client:      &http.Client{Timeout: 10 * time.Second},
		telegramAPI: telegramAPI,
	}
}

// Enabled reports whether any destination is configured.
func (n *Notifier) Enabled() bool {
	return n.config.SlackURL != "" || (n.config.TelegramToken != "" && n.config.TelegramChatID != "")
}

// Dispatch sends run to every destination and waits for the sends to
// finish. Failures are logged only.
func (n *Notifier) Dispatch(run *model.Run) {
	if !n.Enabled() {
		return
	}
	content := n.render(run)

	var wg sync.WaitGroup
	if n.config.SlackURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.send(n.config.SlackURL, map[string]interface{}{"text": content})
		}()
	}
	if n.config.TelegramToken != "" && n.config.TelegramChatID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url := n.telegramAPI + "/bot" + n.config.TelegramToken + "/sendMessage"
			n.send(url, map[string]interface{}{
				"chat_id": n.config.TelegramChatID,
				"text":    content,
			})
		}()
	}
	wg.Wait()
}

func (n *Notifier) render(run *model.Run) string {
	tmpl, err := template.New("msg").Parse(n.config.Template)
	if err != nil {
		logger.Log.Warnf("Invalid webhook template, using default: %v", err)
		tmpl = template.Must(template.New("msg").Parse(DefaultTemplate))
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, run); err != nil {
		logger.Log.Warnf("Failed to render webhook template: %v", err)
		return run.ID + " " + run.State
	}
	return buf.String()
}

func (n *Notifier) send(url string, body map[string]interface{}) {
	payload, err := json.Marshal(body)
	if err != nil {
		logger.Log.Errorf("Failed to marshal webhook payload: %v", err)
		return
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	if err != nil {
		logger.Log.Errorf("Failed to create request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		logger.Log.Errorf("Failed to send webhook: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		logger.Log.Errorf("Webhook returned status: %d", resp.StatusCode)
	} else {
		logger.Log.Infof("Webhook delivered (%d)", resp.StatusCode)
	}
}
