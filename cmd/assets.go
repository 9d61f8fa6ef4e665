package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"grveyardapp/pkg/assets"
	"grveyardapp/pkg/auth"
	"grveyardapp/pkg/paging"
	"grveyardapp/pkg/result"
	"grveyardapp/pkg/storage"
)

var (
	browsePages int

	sellTitle       string
	sellDescription string
	sellType        string
	sellPrice       int64
	sellImageURL    string
	sellNegotiable  bool
	sellImageFile   string
	sellEmail       string
	sellPassword    string
)

func init() {
	browseCmd.Flags().IntVar(&browsePages, "pages", 1, "number of pages to fetch")
	mineCmd.Flags().IntVar(&browsePages, "pages", 1, "number of pages to fetch")
	mineCmd.Flags().StringVar(&sellEmail, "email", "", "account email")
	mineCmd.Flags().StringVar(&sellPassword, "password", "", "account password")

	sellCmd.Flags().StringVar(&sellTitle, "title", "", "asset title")
	sellCmd.Flags().StringVar(&sellDescription, "description", "", "asset description")
	sellCmd.Flags().StringVar(&sellType, "type", "other", "asset type (research|codebase|domain|product|data|other)")
	sellCmd.Flags().Int64Var(&sellPrice, "price", 0, "asking price")
	sellCmd.Flags().StringVar(&sellImageURL, "image-url", "", "image URL for the listing")
	sellCmd.Flags().BoolVar(&sellNegotiable, "negotiable", false, "price is negotiable")
	sellCmd.Flags().StringVar(&sellImageFile, "image", "", "path to a JPEG to upload for the listing")
	sellCmd.Flags().StringVar(&sellEmail, "email", "", "account email")
	sellCmd.Flags().StringVar(&sellPassword, "password", "", "account password")
	_ = sellCmd.MarkFlagRequired("title")
}

func printAsset(a assets.Asset) {
	status := "available"
	if a.IsSold {
		status = "sold"
	}
	fmt.Printf("#%d  %-30s  %-9s  %8d  %s\n", a.ID, a.Title, a.AssetType, a.Price, status)
}

func drainPager(ctx context.Context, pager *paging.Pager[assets.Asset], pages int) error {
	for i := 0; i < pages; i++ {
		items, err := pager.LoadNext(ctx)
		if errors.Is(err, paging.ErrExhausted) {
			fmt.Println("-- end of listings --")
			return nil
		}
		if err != nil {
			return err
		}
		for _, a := range items {
			printAsset(a)
		}
	}
	if pager.Exhausted() {
		fmt.Println("-- end of listings --")
	}
	return nil
}

func uploadListingImage(ctx context.Context, path string) (string, error) {
	ident, ok := provider.Current()
	if !ok {
		return "", auth.ErrNotAuthenticated
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	store, err := storage.NewS3Store(cfg.Storage.Bucket, cfg.Storage.Region)
	if err != nil {
		return "", err
	}
	return store.UploadAssetImage(ctx, ident.UID, f)
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse assets for sale",
	RunE: func(cmd *cobra.Command, args []string) error {
		return drainPager(cmd.Context(), assetService.AssetsPager(), browsePages)
	},
}

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your own assets",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureSession(cmd.Context(), sellEmail, sellPassword); err != nil {
			return err
		}
		pager, err := assetService.OwnAssetsPager()
		if err != nil {
			return err
		}
		return drainPager(cmd.Context(), pager, browsePages)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <asset-id>",
	Short: "Show one asset's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil || id <= 0 {
			return fmt.Errorf("invalid asset id %q", args[0])
		}

		for state := range assetService.AssetDetails(cmd.Context(), id) {
			switch state.Kind {
			case result.KindLoading:
				fmt.Fprintln(os.Stderr, "loading...")
			case result.KindSuccess:
				a := state.Data
				printAsset(a)
				fmt.Printf("seller: %s\nlisted: %s\n\n%s\n", a.UserUUID, a.CreatedAt, a.Description)
			case result.KindError:
				return errors.New(state.Err)
			}
		}
		return nil
	},
}

var sellCmd = &cobra.Command{
	Use:   "sell",
	Short: "Create a new listing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureSession(cmd.Context(), sellEmail, sellPassword); err != nil {
			return err
		}

		if sellImageFile != "" {
			url, err := uploadListingImage(cmd.Context(), sellImageFile)
			if err != nil {
				return err
			}
			sellImageURL = url
		}

		flow := assetService.CreateAsset(cmd.Context(), assets.CreateAssetRequest{
			Title:        sellTitle,
			Description:  sellDescription,
			AssetType:    sellType,
			ImageURL:     sellImageURL,
			Price:        sellPrice,
			IsNegotiable: sellNegotiable,
		})
		terminal, ok := result.Collect(flow)
		if !ok {
			return errors.New("create flow ended without a result")
		}
		if terminal.Kind == result.KindError {
			return errors.New(terminal.Err)
		}
		fmt.Printf("listed asset #%d\n", terminal.Data.ID)
		return nil
	},
}
