package project

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/field"
)

// AutosaveFilename is the fixed path an autosave is written to, per §4.13.
const AutosaveFilename = "autosave.cmz"

func errNotAPolygon(wkt string) error {
	return engineerr.Newf("project.FieldFromDoc", engineerr.InvalidInput, "field WKT is not a polygon: %s", wkt)
}

// ValidateFilename rejects any filename containing "..", "/", or "\\", per
// §4.13's traversal guard. It operates on the base filename the caller
// intends to write under a fixed project directory, not an arbitrary path.
func ValidateFilename(name string) error {
	if name == "" {
		return engineerr.Newf("project.ValidateFilename", engineerr.InvalidInput, "filename must not be empty")
	}
	if strings.Contains(name, "..") || strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return engineerr.Newf("project.ValidateFilename", engineerr.InvalidInput, "filename %q must not contain '..', '/', or '\\'", name)
	}
	return nil
}

// Stamp sets doc.SavedAt to now in UTC ISO-8601, matching §4.13's
// requirement that saved projects carry their save time.
func Stamp(doc Document, now time.Time) Document {
	doc.SavedAt = now.UTC().Format(time.RFC3339)
	return doc
}

// Save validates filename and writes doc as indented UTF-8 JSON to path.
// doc.Version is forced to CurrentVersion.
func Save(path, filename string, doc Document) error {
	if err := ValidateFilename(filename); err != nil {
		return err
	}
	doc.Version = CurrentVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return engineerr.New("project.Save", engineerr.InvalidInput, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return engineerr.New("project.Save", engineerr.ResourceFailure, err)
	}
	return nil
}

// Autosave writes doc to the fixed autosave path inside dir.
func Autosave(dir string, doc Document) error {
	path := dir + string(os.PathSeparator) + AutosaveFilename
	return Save(path, AutosaveFilename, doc)
}

// Load reads and decodes a project file. A document whose Version exceeds
// CurrentVersion's major version fails the load per §6. Unknown fields are
// dropped silently by encoding/json's default decoding; Load reports no
// warning for them.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, engineerr.New("project.Load", engineerr.ResourceFailure, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, engineerr.New("project.Load", engineerr.InvalidInput, err)
	}
	if doc.Version > CurrentVersion {
		return Document{}, engineerr.Newf("project.Load", engineerr.InvalidInput,
			"project file version %d is newer than supported version %d", doc.Version, CurrentVersion)
	}
	return doc, nil
}

// LoadBoundaryOnly restores only the field, CRS, and centroid offset from a
// project file — for starting a new design on an existing field, per
// §4.13.
func LoadBoundaryOnly(path string) (field.Field, error) {
	doc, err := Load(path)
	if err != nil {
		return field.Field{}, err
	}
	return FieldFromDoc(doc.Field)
}
