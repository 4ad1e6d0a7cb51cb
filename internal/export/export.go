// Package export turns a mapped table and general package details into a
// validated Parquet data package.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"datapack/internal/concept"
	"datapack/internal/datapackage"
	"datapack/internal/domain"
	"datapack/internal/table"
	"datapack/internal/validation"
)

// Parquet resource descriptors.
const (
	ParquetFormat    = "parquet"
	ParquetMediaType = "application/vnd.apache.parquet"
	ResourceProfile  = "tabular-data-resource"
)

// Writer persists a table with its package document.
type Writer interface {
	WriteParquet(ctx context.Context, path string, tbl *table.Table, doc map[string]any) error
}

// LicenseDetails is a license entry of GeneralDetails.
type LicenseDetails struct {
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ContributorDetails is a contributor entry of GeneralDetails.
type ContributorDetails struct {
	Name         string `json:"name" yaml:"name"`
	Role         string `json:"role,omitempty" yaml:"role,omitempty"`
	Email        string `json:"email,omitempty" yaml:"email,omitempty"`
	Organization string `json:"organization,omitempty" yaml:"organization,omitempty"`
}

// SourceDetails is a source entry of GeneralDetails.
type SourceDetails struct {
	Title       string `json:"title" yaml:"title"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// GeneralDetails is the package-level information entered by the user.
type GeneralDetails struct {
	Name         string               `json:"name" yaml:"name"`
	Title        string               `json:"title,omitempty" yaml:"title,omitempty"`
	Description  string               `json:"description,omitempty" yaml:"description,omitempty"`
	Version      string               `json:"version,omitempty" yaml:"version,omitempty"`
	Profile      string               `json:"profile,omitempty" yaml:"profile,omitempty"`
	Keywords     []string             `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Homepage     string               `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Repository   string               `json:"repository,omitempty" yaml:"repository,omitempty"`
	Created      string               `json:"created,omitempty" yaml:"created,omitempty"`
	Modified     string               `json:"modified,omitempty" yaml:"modified,omitempty"`
	Licenses     []LicenseDetails     `json:"licenses,omitempty" yaml:"licenses,omitempty"`
	Contributors []ContributorDetails `json:"contributors,omitempty" yaml:"contributors,omitempty"`
	Sources      []SourceDetails      `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// Request is everything needed for one export.
type Request struct {
	Table    *table.Table
	Mappings []validation.Mapping
	Details  GeneralDetails
	// FileName and SheetName name the spreadsheet the table came from. They
	// seed the resource name and the default descriptions.
	FileName  string
	SheetName string
}

// Outcome describes a written package.
type Outcome struct {
	ID       string
	Path     string
	Document datapackage.Document
	// Result is nil when validation was skipped.
	Result *validation.Result
}

// Level returns the compliance level, or "" when validation was skipped.
func (o *Outcome) Level() validation.Level {
	if o.Result == nil {
		return ""
	}
	return o.Result.Level
}

// ValidationFailedError is returned when the built package does not conform
// to the standard. Nothing is written.
type ValidationFailedError struct {
	Result *validation.Result
}

func (e *ValidationFailedError) Error() string {
	return FailureMessage(e.Result)
}

// Exporter builds, validates and writes data packages.
type Exporter struct {
	validator *validation.Validator
	writer    Writer
	logger    *slog.Logger
}

// New returns an Exporter. A nil logger discards output.
func New(validator *validation.Validator, writer Writer, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{validator: validator, writer: writer, logger: logger}
}

// CheckInputs reports every problem with the request that prevents building
// a package at all.
func CheckInputs(req Request) error {
	var problems []string
	if req.Table == nil || req.Table.NumRows() == 0 || req.Table.NumCols() == 0 {
		problems = append(problems, "table is empty")
	}
	if req.Details.Name == "" {
		problems = append(problems, "package name is required")
	} else if err := datapackage.ValidatePackageName(req.Details.Name); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return domain.ErrValidation("validation failed: %s", strings.Join(problems, ", "))
	}
	return nil
}

// CheckColumnTypes rejects columns whose non-null cells have more than one
// runtime type, since Parquet columns are homogeneous.
func CheckColumnTypes(tbl *table.Table) error {
	var problems []string
	for _, col := range tbl.Columns() {
		if !col.IsDynamic() {
			continue
		}
		types := col.Types(0)
		if len(types) < 2 {
			continue
		}
		samples := make([]string, 0, len(types))
		for _, name := range types {
			for _, v := range col.Values {
				if !table.IsNull(v) && table.TypeName(v) == name {
					samples = append(samples, fmt.Sprintf("%s: %#v", name, v))
					break
				}
			}
		}
		problems = append(problems, fmt.Sprintf(
			"Column '%s' contains mixed data types: %s.\n  Examples: %s\n  Please ensure all values in this column are of the same type.",
			col.Name, strings.Join(types, ", "), strings.Join(samples, " | ")))
	}
	if len(problems) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("Data quality issues found that prevent Parquet conversion:\n\n")
	for i, p := range problems {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, p)
	}
	b.WriteString("\n\nPlease clean your data and try again.")
	return domain.ErrValidation("%s", b.String())
}

// Export builds the package for req, validates it against the standard when
// validate is set and writes it to outPath.
func (e *Exporter) Export(ctx context.Context, req Request, outPath string, validate bool) (*Outcome, error) {
	if err := CheckInputs(req); err != nil {
		return nil, err
	}
	if err := CheckColumnTypes(req.Table); err != nil {
		return nil, err
	}

	fields, err := BuildFields(req)
	if err != nil {
		return nil, err
	}
	resource, err := BuildResource(req, fields)
	if err != nil {
		return nil, err
	}
	doc, err := BuildMetadata(req.Details, resource)
	if err != nil {
		return nil, err
	}

	out := &Outcome{ID: domain.NewID(), Path: outPath, Document: doc}
	if validate {
		out.Result = e.validator.ValidateAll(doc, req.Table, EffectiveMappings(req))
		if !out.Result.IsValid() {
			e.logger.Warn("export rejected", "package", req.Details.Name, "errors", len(out.Result.Errors))
			return nil, &ValidationFailedError{Result: out.Result}
		}
	}

	if err := e.writer.WriteParquet(ctx, outPath, req.Table, doc); err != nil {
		return nil, fmt.Errorf("write package: %w", err)
	}
	e.logger.Info("package exported", "id", out.ID, "package", req.Details.Name, "path", outPath, "level", out.Level())
	return out, nil
}

// FieldType maps a column's storage kind to a field type.
func FieldType(kind table.Kind) datapackage.FieldType {
	switch kind {
	case table.KindInt:
		return datapackage.FieldTypeInteger
	case table.KindFloat:
		return datapackage.FieldTypeNumber
	case table.KindBool:
		return datapackage.FieldTypeBoolean
	case table.KindTime:
		return datapackage.FieldTypeDatetime
	default:
		return datapackage.FieldTypeString
	}
}

// BuildFields derives one field per column. Numeric columns take the unit of
// their mapping, or the dimensionless unit when none is mapped. Concept IRIs
// become the rdfType and taxonomy URL.
func BuildFields(req Request) ([]*datapackage.Field, error) {
	byColumn := mappingIndex(req.Mappings)
	sheet := sheetName(req)

	fields := make([]*datapackage.Field, 0, req.Table.NumCols())
	for _, col := range req.Table.Columns() {
		kind := col.Kind
		if col.IsDynamic() {
			kind = table.InferKind(col.Values)
		}
		f := datapackage.Field{Name: col.Name, Type: FieldType(kind)}
		m, mapped := byColumn[col.Name]

		if f.Type.IsNumeric() {
			if mapped && m.Unit != nil && m.Unit.ID != "" {
				label := m.Unit.Label
				if label == "" {
					label = concept.LabelFor(m.Unit.ID)
				}
				f.Unit = &datapackage.Unit{Name: label, LongName: m.Unit.Label, Path: m.Unit.ID}
			} else {
				f.Unit = datapackage.DimensionlessUnit()
			}
		}

		switch {
		case mapped && m.Description != "":
			f.Description = m.Description
		case mapped && m.HasConcept():
			f.Description = fmt.Sprintf("Column from %s", sheet)
		default:
			f.Description = fmt.Sprintf("%s (from %s)", col.Name, sheet)
		}
		if mapped && m.HasConcept() {
			f.RDFType = m.Concept.ID
			f.TaxonomyURL = m.Concept.ID
		}

		field, err := datapackage.NewField(f)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// ResourceName derives the resource name from the file stem and sheet name.
func ResourceName(fileName, sheetName string) string {
	stem := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	name := stem
	if sheetName != "" {
		name = stem + "_" + sheetName
	}
	if name == "" || name == "." {
		name = "data"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// BuildResource describes the Parquet file that will hold the table.
func BuildResource(req Request, fields []*datapackage.Field) (*datapackage.Resource, error) {
	name := ResourceName(req.FileName, req.SheetName)
	title := req.Details.Title
	if title == "" {
		title = req.FileName
	}
	description := req.Details.Description
	if description == "" {
		description = fmt.Sprintf("Data from %s", sheetName(req))
	}
	return datapackage.NewResource(datapackage.Resource{
		Name:        name,
		Path:        name + ".parquet",
		Title:       title,
		Description: description,
		Format:      ParquetFormat,
		MediaType:   ParquetMediaType,
		Encoding:    datapackage.DefaultEncoding,
		Profile:     ResourceProfile,
		Fields:      fields,
	})
}

// BuildMetadata assembles the package document from the details and the
// resource.
func BuildMetadata(d GeneralDetails, resource *datapackage.Resource) (datapackage.Document, error) {
	b := datapackage.NewBuilder().
		SetBasicInfo(d.Name, d.Title, d.Description, d.Version).
		SetLinks(d.Homepage, d.Repository).
		SetDates(d.Created, d.Modified)
	if d.Profile != "" {
		b.SetProfile(d.Profile)
	}
	if len(d.Keywords) > 0 {
		b.SetKeywords(d.Keywords)
	}
	for _, l := range d.Licenses {
		b.AddLicense(l.Name, l.Title, l.Path)
	}
	for _, c := range d.Contributors {
		b.AddContributor(c.Name, datapackage.ContributorRole(c.Role), c.Email, c.Organization)
	}
	for _, s := range d.Sources {
		b.AddSource(s.Title, s.Path, s.Description)
	}
	return b.AddResource(resource).Build()
}

// EffectiveMappings returns the mappings with the dimensionless unit filled
// in for numeric columns that have no unit, matching the fields BuildFields
// produces.
func EffectiveMappings(req Request) []validation.Mapping {
	out := make([]validation.Mapping, len(req.Mappings))
	copy(out, req.Mappings)
	for i, m := range out {
		if m.Unit != nil && m.Unit.ID != "" {
			continue
		}
		col, ok := req.Table.Column(m.Column)
		if !ok {
			continue
		}
		kind := col.Kind
		if col.IsDynamic() {
			kind = table.InferKind(col.Values)
		}
		if kind.IsNumeric() {
			unit := datapackage.DimensionlessUnit()
			out[i].Unit = &concept.Suggestion{ID: unit.Path, Label: unit.Name}
		}
	}
	return out
}

func mappingIndex(mappings []validation.Mapping) map[string]validation.Mapping {
	out := make(map[string]validation.Mapping, len(mappings))
	for _, m := range mappings {
		out[m.Column] = m
	}
	return out
}

func sheetName(req Request) string {
	if req.SheetName != "" {
		return req.SheetName
	}
	if req.FileName != "" {
		return filepath.Base(req.FileName)
	}
	return "data"
}
