package provider

import "github.com/0xADE/ade-steam-search/internal/config"

// resolveTarget fills empty values from the daemon's bus settings
// (STEAM_SEARCH_BUS_NAME, STEAM_SEARCH_OBJECT_PATH and their defaults).
func resolveTarget(busName, objectPath string) (string, string, error) {
	if busName != "" && objectPath != "" {
		return busName, objectPath, nil
	}

	bus, err := config.LoadBus()
	if err != nil {
		return "", "", err
	}
	if busName == "" {
		busName = bus.BusName
	}
	if objectPath == "" {
		objectPath = bus.ObjectPath
	}
	return busName, objectPath, nil
}
