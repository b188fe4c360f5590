package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shelfscan/shelfscan/internal/gemini"
	"github.com/shelfscan/shelfscan/internal/ollama"
	"github.com/shelfscan/shelfscan/internal/openai"
	"github.com/shelfscan/shelfscan/internal/providers"
)

const defaultDescribePrompt = "Describe what is in this image."

func newDescribeCmd() *cobra.Command {
	var imagePath string
	var provider string
	var model string
	var prompt string

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Describe an image in free text",
		Long: `Sends an image to a vision-capable LLM provider and prints its free-text
description. Useful for checking what a model can actually see in a photo
before running detection on it.`,
		Example: `  # Describe with the default OpenAI provider
  shelfscan describe --image myBooks.jpg

  # Describe with Gemini
  shelfscan describe --image myBooks.jpg --provider gemini --model gemini-1.5-flash`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("failed to read image file: %w", err)
			}

			p, err := newProvider(provider)
			if err != nil {
				return err
			}

			if model == "" {
				model = defaultModelFor(provider)
			}

			description, err := p.DescribeImage(cmd.Context(), providers.Config{
				Model:       model,
				Temperature: 0.2,
				Prompt:      prompt,
			}, data)
			if err != nil {
				return err
			}

			fmt.Println(description)
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Path to a local image file")
	cmd.Flags().StringVarP(&provider, "provider", "p", "openai", "Provider: openai, gemini, or ollama")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model to use")
	cmd.Flags().StringVar(&prompt, "prompt", defaultDescribePrompt, "Prompt to send with the image")

	if err := cmd.MarkFlagRequired("image"); err != nil {
		panic(err)
	}

	return cmd
}

func newProvider(name string) (providers.Provider, error) {
	switch name {
	case "openai":
		return openai.New(), nil
	case "gemini":
		return gemini.New(), nil
	case "ollama":
		return ollama.New(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

func defaultModelFor(provider string) string {
	switch provider {
	case "openai":
		if model := os.Getenv("OPENAI_MODEL"); model != "" {
			return model
		}
		return "gpt-4o-mini"
	case "gemini":
		if model := os.Getenv("GEMINI_MODEL"); model != "" {
			return model
		}
		return "gemini-1.5-flash"
	case "ollama":
		if model := os.Getenv("OLLAMA_MODEL"); model != "" {
			return model
		}
		return "mistral-small3.2:24b"
	default:
		return ""
	}
}
