package detector

import openai "github.com/sashabaranov/go-openai"

// transcript is the ordered conversation exchanged with the LLM across the
// round-trips of one detection call. It is owned by exactly one in-flight
// call and is only ever extended, never mutated in place: append returns a
// fresh slice so earlier phases keep a stable view of what they sent.
type transcript []openai.ChatCompletionMessage

func (t transcript) append(msgs ...openai.ChatCompletionMessage) transcript {
	out := make(transcript, 0, len(t)+len(msgs))
	out = append(out, t...)
	return append(out, msgs...)
}

// newTranscript seeds the conversation with the system instructions and a
// user turn carrying the image
func newTranscript(systemPrompt string, img Image) transcript {
	return transcript{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    img.URL(),
						Detail: openai.ImageURLDetailHigh,
					},
				},
			},
		},
	}
}
