package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"example.com/chandb/internal/model"
)

// Edit is one mutation of a single channel, addressed by list kind and
// record id. Nil fields are left untouched.
type Edit struct {
	List      string  `yaml:"list"`
	RecordID  int     `yaml:"recordId"`
	Number    *int    `yaml:"number,omitempty"`
	Name      *string `yaml:"name,omitempty"`
	Favorites *uint8  `yaml:"favorites,omitempty"`
	Hidden    *bool   `yaml:"hidden,omitempty"`
	Delete    *bool   `yaml:"delete,omitempty"`
}

// EditPlan is the YAML mutation surface of the apply command.
type EditPlan struct {
	Edits []Edit `yaml:"edits"`
}

// LoadPlan reads an edit plan from path.
func LoadPlan(path string) (EditPlan, error) {
	var plan EditPlan
	b, err := os.ReadFile(path)
	if err != nil {
		return plan, err
	}
	if err := yaml.Unmarshal(b, &plan); err != nil {
		return plan, err
	}
	return plan, nil
}

// Apply mutates the loaded channel lists and returns how many edits were
// applied. An edit addressing an unknown list or record is an error; a
// plan either applies fully or the document should be discarded unsaved.
func (p EditPlan) Apply(root *model.DataRoot) (int, error) {
	applied := 0
	for i, e := range p.Edits {
		kind, err := model.ParseListKind(e.List)
		if err != nil {
			return applied, fmt.Errorf("edit %d: %w", i, err)
		}
		list := root.ListByKind(kind)
		if list == nil {
			return applied, fmt.Errorf("edit %d: document has no %s list", i, e.List)
		}
		ch := channelByRecordID(list, e.RecordID)
		if ch == nil {
			return applied, fmt.Errorf("edit %d: no record %d in %s list", i, e.RecordID, e.List)
		}
		if e.Number != nil {
			ch.NewProgramNr = *e.Number
		}
		if e.Name != nil {
			ch.SetName(*e.Name)
		}
		if e.Favorites != nil {
			ch.Favorites = *e.Favorites
		}
		if e.Hidden != nil {
			ch.Hidden = *e.Hidden
		}
		if e.Delete != nil {
			ch.IsDeleted = *e.Delete
			if *e.Delete {
				ch.NewProgramNr = -1
			}
		}
		applied++
	}
	return applied, nil
}

func channelByRecordID(list *model.ChannelList, recID int) *model.Channel {
	for _, ch := range list.Channels {
		if ch.RecordID == recID {
			return ch
		}
	}
	return nil
}
