package info

import (
	"context"
	"fmt"
	"os"

	"tableflip.dev/lowerthird/pkg/store"
)

type Info struct {
	Config      store.Config
	Persistence store.Persistence
}

func (n *Info) Do(ctx context.Context) error {

	if override := os.Getenv("LOWERTHIRD_CONFIG_PATH"); override != "" {
		fmt.Println("LOWERTHIRD_CONFIG_PATH found on env, using ", override)
	} else {
		fmt.Println("LOWERTHIRD_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}

	fmt.Println("Config.path: ", n.Config.BasePath())
	fmt.Println("Config.backend: ", n.Config.Backend())
	if n.Config.Backend() == store.BackendRemote {
		fmt.Println("Config.remote: ", n.Config.RemoteURL())
	}
	fmt.Println("Config.display: ", n.Config.DisplayAddr())

	if n.Persistence == nil {
		return fmt.Errorf("failed to create persistence object")
	}
	fmt.Println("Assets: ", n.Persistence.AssetDir())

	cat, err := n.Persistence.Catalog()
	if err != nil {
		return err
	}
	fmt.Printf("Lower thirds: %d\n", len(n.Persistence.Overlays(ctx)))
	fmt.Printf("Themes: %d\n", len(n.Persistence.Themes(ctx)))
	if cat.ActiveThemeID != "" {
		fmt.Printf("Active theme: %s\n", cat.ActiveThemeID)
	} else {
		fmt.Printf("Active theme: %s\n", "none")
	}
	return nil
}
