package commands

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"collection-points/internal/models"
	createpoint "collection-points/internal/workflow/create-point"
)

type createOptions struct {
	name      string
	email     string
	whatsapp  string
	uf        string
	city      string
	latitude  float64
	longitude float64
	items     []int
	image     string
}

// create: run one creation session from flags and print the created record.
func createCmd() *cobra.Command {
	opts := &createOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a collection point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			placed := cmd.Flags().Changed("latitude") || cmd.Flags().Changed("longitude")
			return runCreate(cmd, opts, placed)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "", "entity name")
	f.StringVar(&opts.email, "email", "", "contact email")
	f.StringVar(&opts.whatsapp, "whatsapp", "", "contact phone")
	f.StringVar(&opts.uf, "uf", "", "state code")
	f.StringVar(&opts.city, "city", "", "city name")
	f.Float64Var(&opts.latitude, "latitude", 0, "point latitude (default: device position)")
	f.Float64Var(&opts.longitude, "longitude", 0, "point longitude (default: device position)")
	f.IntSliceVar(&opts.items, "items", nil, "collected item ids, comma separated")
	f.StringVar(&opts.image, "image", "", "path of a photo of the point")
	return cmd
}

func runCreate(cmd *cobra.Command, opts *createOptions, placed bool) error {
	ctx := cmd.Context()
	session, err := appCtx.NewSession(ctx)
	if err != nil {
		return err
	}
	session.Start()
	session.Wait()
	defer session.Abandon()

	snap := session.Snapshot()
	if snap.StatesStatus.Status == createpoint.FetchFailed {
		return snap.StatesStatus.Err
	}
	if len(opts.items) > 0 && snap.CatalogStatus.Status == createpoint.FetchFailed {
		return snap.CatalogStatus.Err
	}

	if err := session.SetProfile(models.EntityProfile{
		Name:  opts.name,
		Email: opts.email,
		Phone: opts.whatsapp,
	}); err != nil {
		return err
	}

	if opts.uf != "" {
		if err := session.SelectState(opts.uf); err != nil {
			return err
		}
		session.Wait()
		if status := session.Snapshot().CitiesStatus; status.Status == createpoint.FetchFailed {
			return status.Err
		}
		if opts.city != "" {
			if err := session.SelectCity(opts.city); err != nil {
				return err
			}
		}
	}

	if placed {
		if err := session.OnMapTap(models.GeoCoordinate{Latitude: opts.latitude, Longitude: opts.longitude}); err != nil {
			return err
		}
	}

	for _, id := range opts.items {
		if session.Snapshot().Selected(id) {
			continue
		}
		if _, err := session.ToggleItem(id); err != nil {
			return err
		}
	}

	if opts.image != "" {
		image, err := readImage(opts.image)
		if err != nil {
			return err
		}
		if err := session.SetImage(image); err != nil {
			return err
		}
	}

	point, err := session.Submit(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(point)
}

func readImage(path string) (models.ImageAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ImageAsset{}, fmt.Errorf("failed to read image: %w", err)
	}
	return models.ImageAsset{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}
