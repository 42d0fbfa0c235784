package alert

import (
	"context"
	"fmt"
	"time"
	
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Notifier sends an operational alert to whoever is on call.
type Notifier interface {
	Alert(ctx context.Context, message string) error
}

type channelMessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts alerts into a Discord channel.
type DiscordNotifier struct {
	session   channelMessageSender
	channelID string
	now       func() time.Time
}

// NewDiscordNotifier khởi tạo session Discord với token bot.
func NewDiscordNotifier(botToken, channelID string) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
		now:       time.Now,
	}, nil
}

func (n *DiscordNotifier) Alert(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	
	// Định dạng thời gian HH:MM:SS dd/mm/yyyy
	content := fmt.Sprintf("🚨 [%s] %s", n.now().Format("15:04:05 02/01/2006"), message)
	
	_, err := n.session.ChannelMessageSend(n.channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send Discord alert: %w", err)
	}
	return nil
}

// LogNotifier only writes the alert to the log. Used when Discord is not configured.
type LogNotifier struct{}

func (LogNotifier) Alert(_ context.Context, message string) error {
	log.Warn().Str("alert", message).Msg("ops alert")
	return nil
}
