package appstate

import "sync"

const (
	themeKey   = "theme"
	themeDark  = "dark"
	themeLight = "light"
)

type Palette struct {
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
	Muted      string `json:"muted"`
	Border     string `json:"border"`
	Accent     string `json:"accent"`
}

var (
	darkPalette = Palette{
		Background: "#0f172a",
		Surface:    "#1e293b",
		Text:       "#f1f5f9",
		Muted:      "#94a3b8",
		Border:     "#334155",
		Accent:     "#3b82f6",
	}
	lightPalette = Palette{
		Background: "#f8fafc",
		Surface:    "#ffffff",
		Text:       "#0f172a",
		Muted:      "#64748b",
		Border:     "#e2e8f0",
		Accent:     "#2563eb",
	}
)

// Theme is the dark/light preference. Dark is the default when nothing has
// been persisted.
type Theme struct {
	mu      sync.RWMutex
	storage Storage
	dark    bool
}

func NewTheme(storage Storage) *Theme {
	saved, ok := storage.Get(themeKey)
	return &Theme{storage: storage, dark: !ok || saved != themeLight}
}

func (t *Theme) IsDark() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dark
}

func (t *Theme) Name() string {
	if t.IsDark() {
		return themeDark
	}
	return themeLight
}

// Toggle flips the mode, persists it and returns the new IsDark value.
func (t *Theme) Toggle() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := !t.dark
	value := themeLight
	if next {
		value = themeDark
	}
	if err := t.storage.Set(themeKey, value); err != nil {
		return t.dark, err
	}
	t.dark = next
	return t.dark, nil
}

func (t *Theme) Colors() Palette {
	if t.IsDark() {
		return darkPalette
	}
	return lightPalette
}
