package bot

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"crypto-live/internal/domain"

	tele "gopkg.in/telebot.v3"
)

const (
	defaultTopN = 10
	maxTopN     = 25
)

// SnapshotSource is the read side of the snapshot slot.
type SnapshotSource interface {
	Current() *domain.Snapshot
}

var newBot = tele.NewBot

// StartTelegramBot serves /ping, /top and /price from the current snapshot.
// It returns immediately; an empty token disables the bot.
func StartTelegramBot(token string, snapshots SnapshotSource) (*tele.Bot, error) {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := newBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/top", func(c tele.Context) error {
		return c.Send(topMessage(snapshots.Current(), c.Args()))
	})

	b.Handle("/price", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /price BTC")
		}
		return c.Send(priceMessage(snapshots.Current(), args[0]))
	})

	log.Println("Telegram bot started")
	go b.Start()
	return b, nil
}

func topMessage(snap *domain.Snapshot, args []string) string {
	if snap == nil || len(snap.Records) == 0 {
		return "No market data yet, try again shortly."
	}

	n := defaultTopN
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return "Usage: /top [n]"
		}
		n = min(v, maxTopN)
	}
	n = min(n, len(snap.Records))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Top %d (update #%d, %s)\n", n, snap.Sequence, snap.Timestamp.Format(domain.TimestampLayout))
	for i, a := range snap.Records[:n] {
		fmt.Fprintf(&sb, "%d. %s $%.2f (%+.2f%%)\n", i+1, a.Symbol, a.PriceUSD, a.Change24hPct)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func priceMessage(snap *domain.Snapshot, symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if snap == nil || len(snap.Records) == 0 {
		return "No market data yet, try again shortly."
	}
	for _, a := range snap.Records {
		if a.Symbol == symbol {
			return fmt.Sprintf(
				"%s (%s)\nPrice: $%.2f\n24h Change: %.2f%%\n24h Volume: $%.0f\nMarket Cap: $%.0f",
				a.Name, a.Symbol, a.PriceUSD, a.Change24hPct, a.Volume24h, a.MarketCap,
			)
		}
	}
	return fmt.Sprintf("Unknown symbol: %s\nNot in the current top %d.", symbol, len(snap.Records))
}
