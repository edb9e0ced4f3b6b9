package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/kechako/mockingbird/greeting"
)

const (
	colorSuccess = 0x26cb3f
	colorInfo    = 0x629bf8
	colorWarn    = 0xffbd32
	colorError   = 0xff5959
)

func createResponse(title, description string, color int) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				createEmbed(title, description, color),
			},
		},
	}
}

func createEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
	}
}

func createSuccessResponse(title, description string) *discordgo.InteractionResponse {
	return createResponse(title, description, colorSuccess)
}

func createInfoResponse(title, description string) *discordgo.InteractionResponse {
	return createResponse(title, description, colorInfo)
}

func createWarnResponse(title, description string) *discordgo.InteractionResponse {
	return createResponse(title, description, colorWarn)
}

func createErrorResponse(title, description string) *discordgo.InteractionResponse {
	return createResponse(title, description, colorError)
}

// mockEmbed is the card carrying the mocking text.
func mockEmbed(text string) *discordgo.MessageEmbed {
	if text == "" {
		text = "\u200b"
	}
	return createEmbed(greeting.CardTitle, text, colorSuccess)
}

func createMockResponse(embeds ...*discordgo.MessageEmbed) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: embeds,
		},
	}
}

// createFallbackResponse answers anything the bot could not handle.
func createFallbackResponse() *discordgo.InteractionResponse {
	return createErrorResponse(greeting.Fallback, greeting.Reprompt)
}
