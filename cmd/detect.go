package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfscan/shelfscan/internal/detector"
	"github.com/shelfscan/shelfscan/internal/llm"
	"github.com/shelfscan/shelfscan/internal/models"
	"github.com/shelfscan/shelfscan/internal/openlibrary"
)

func newDetectCmd() *cobra.Command {
	var imagePath string
	var imageURL string
	var strategy string
	var model string

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect books in an image",
		Long: `Detects the books visible in an image and prints the title, authors,
and average rating of each one.

The image is either a local file (sent to the LLM base64-encoded) or a
remote URL.`,
		Example: `  # Detect books in a local photo
  shelfscan detect --image myBooks.jpg

  # Detect books in a remote image with the simple strategy
  shelfscan detect --url https://example.com/shelf.jpg --strategy simple`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (imagePath == "") == (imageURL == "") {
				return fmt.Errorf("exactly one of --image or --url is required")
			}

			var img detector.Image
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("failed to read image file: %w", err)
				}
				img = detector.ImageFromBytes(data)
			} else {
				img = detector.ImageFromURL(imageURL)
			}

			gateway, err := llm.NewClient()
			if err != nil {
				return err
			}

			if strategy == "" {
				strategy = detector.DefaultStrategy()
			}
			det, err := detector.New(strategy, gateway, model, openlibrary.NewClient())
			if err != nil {
				return err
			}

			result := det.DetectBooks(cmd.Context(), img)
			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Path to a local image file")
	cmd.Flags().StringVarP(&imageURL, "url", "u", "", "URL of a remote image")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "Detection strategy: tools or simple (default tools)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "LLM model to use (default from OPENAI_MODEL or gpt-4o-mini)")

	return cmd
}

func printResult(result models.Result) {
	if result.Message != "" {
		fmt.Println(result.Message)
		return
	}

	for _, book := range result.Books {
		rating := "unrated"
		if book.AverageRating != nil {
			rating = fmt.Sprintf("%.2f", *book.AverageRating)
		}
		fmt.Printf("Title: %s, Authors: %s, Rating: %s\n", book.Title, strings.Join(book.Authors, ", "), rating)
	}
}
