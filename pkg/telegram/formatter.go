package telegram

import (
	"fmt"
	"strings"
	"time"
)

// VerdictMessage carries the fields rendered into the analysis notification.
type VerdictMessage struct {
	Ticker        string
	Signal        string
	BuyPercentage int
	Confidence    float64
	Reasoning     string
	EODMovement   *float64
	AnalyzedAt    time.Time
}

// FormatVerdictMessage renders a completed analysis as a Markdown message.
func FormatVerdictMessage(v VerdictMessage) string {
	var sb strings.Builder

	var signalIcon string
	switch strings.ToLower(v.Signal) {
	case "buy":
		signalIcon = "🟢"
	case "sell":
		signalIcon = "🔴"
	default:
		signalIcon = "🟡"
	}

	sb.WriteString(fmt.Sprintf("🤖 **AI Analysis: %s**\n\n", v.Ticker))
	sb.WriteString(fmt.Sprintf("%s Signal: **%s** (buy %d%%)\n", signalIcon, strings.ToUpper(v.Signal), v.BuyPercentage))
	sb.WriteString(fmt.Sprintf("📊 Confidence: %.0f%%\n", v.Confidence*100))
	if v.EODMovement != nil {
		direction := "📈"
		if *v.EODMovement < 0 {
			direction = "📉"
		}
		sb.WriteString(fmt.Sprintf("%s EOD Forecast: %+.2f%%\n", direction, *v.EODMovement))
	}
	sb.WriteString(fmt.Sprintf("\n🧠 **Reasoning:**\n%s\n", v.Reasoning))
	sb.WriteString(fmt.Sprintf("\n📅 _Analyzed at: %s_\n", v.AnalyzedAt.Format("2006-01-02 15:04:05")))

	return sb.String()
}

// FormatErrorAlertMessage renders a failure alert.
func FormatErrorAlertMessage(at time.Time, message string) string {
	return fmt.Sprintf("🚨 **Alert** 🚨\n\n%s\n\n📅 _%s_", message, at.Format("2006-01-02 15:04:05"))
}
