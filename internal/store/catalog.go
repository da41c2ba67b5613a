package store

import (
	"encoding/json"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"LocalNotebook/internal/notebook"
)

const catalogKey = "notebooks"

// SaveCatalog writes the notebook list next to the page contents. Strokes
// live only under their page keys, so the catalogue holds metadata alone.
func (s *PreferencesStore) SaveCatalog(all []notebook.Notebook) error {
	lean := make([]notebook.Notebook, len(all))
	for i := range all {
		lean[i] = *all[i].Clone()
		for j := range lean[i].Pages {
			lean[i].Pages[j].Content = ""
		}
	}
	data, err := json.Marshal(lean)
	if err != nil {
		return errors.Wrap(err, "encode catalog")
	}
	s.prefs.SetString(catalogKey, string(data))
	return nil
}

// LoadCatalog reads the notebook list and fills each page's content from
// the page store. A missing or unreadable catalog yields an empty list.
func (s *PreferencesStore) LoadCatalog() []notebook.Notebook {
	raw := s.prefs.String(catalogKey)
	if raw == "" {
		return nil
	}
	var all []notebook.Notebook
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		log.Warnf("Ignoring unreadable notebook catalog: %v", err)
		return nil
	}
	for i := range all {
		for j := range all[i].Pages {
			all[i].Pages[j].Content = s.Raw(all[i].Pages[j].ID)
		}
	}
	return all
}
