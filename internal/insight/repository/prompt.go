package repository

import (
	"fmt"
	"strings"
	"time"

	"golang-stock-insight/internal/insight/dto"
)

// BuildAnalysisPrompt renders the full analysis prompt for one ticker.
func BuildAnalysisPrompt(input *dto.AnalysisInput) string {
	var barsBuilder strings.Builder
	for _, bar := range input.Bars {
		ts := time.UnixMilli(bar.Timestamp).Format("2006-01-02")
		barsBuilder.WriteString(fmt.Sprintf("%s O:%.2f H:%.2f L:%.2f C:%.2f V:%.0f\n",
			ts, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume))
	}

	var newsBuilder strings.Builder
	for i, item := range input.News {
		newsBuilder.WriteString(fmt.Sprintf("%d. %s (%s)\n   %s\n",
			i+1, item.Title, item.PublishedUTC.Format("2006-01-02 15:04"), item.Description))
	}
	if newsBuilder.Len() == 0 {
		newsBuilder.WriteString("No recent news available.\n")
	}

	articleSection := "No full article available."
	if input.Article != nil {
		articleSection = fmt.Sprintf("Source: %s\nTitle: %s\n\n%s",
			input.Article.Source, input.Article.Title, input.Article.Content)
	}

	promptTemplate := `You are an equity analyst. Analyze the stock %s using the data below.

Current price: $%.2f (%+.2f%% today)

Daily OHLCV bars (oldest first):
%s
Recent news headlines:
%s
Most recent full article:
%s

Respond with JSON only, no markdown, in exactly this shape:

{
  "signal": "buy | sell | hold",
  "buy_percentage": {0 - 100},
  "reasoning": "{one concise paragraph}",
  "eod_movement": {expected percent move by end of day, omit if no intraday view},
  "confidence": {0.0 - 1.0},
  "key_points": ["{short bullet}", "..."]
}`

	return fmt.Sprintf(promptTemplate,
		input.Ticker,
		input.Price,
		input.ChangePercent,
		barsBuilder.String(),
		newsBuilder.String(),
		articleSection,
	)
}
