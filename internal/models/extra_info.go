package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
)

// ExtraInfo is the typed content of hscodes.extra_info. The column holds a JSON
// object or NULL; which variant a stored object is gets decided by its keys.
//
// A nil ExtraInfo is stored as NULL.
type ExtraInfo interface {
	// Kind names the variant, for logs and API output.
	Kind() string
}

// ScheduleExtras holds the non-standard fields of a rich schedule record, verbatim.
type ScheduleExtras map[string]json.RawMessage

// Kind implements ExtraInfo.
func (ScheduleExtras) Kind() string { return "schedule" }

// Keys returns the field names in sorted order.
func (s ScheduleExtras) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TariffLineExtras holds the auxiliary columns of a tabular tariff schedule.
// Every key is always written; empty cells are null.
type TariffLineExtras struct {
	Indent            FlexText `json:"indent"`
	UnitOfQuantity    FlexText `json:"unit_of_quantity"`
	SpecialRateOfDuty FlexText `json:"special_rate_of_duty"`
	Column2RateOfDuty FlexText `json:"column_2_rate_of_duty"`
	QuotaQuantity     FlexText `json:"quota_quantity"`
	AdditionalDuties  FlexText `json:"additional_duties"`
}

// Kind implements ExtraInfo.
func (TariffLineExtras) Kind() string { return "tariff_line" }

// ComplianceNotes holds export-control and import-permit guidance for a code.
type ComplianceNotes struct {
	ECCN                  string `json:"eccn,omitempty"`
	ITAR                  string `json:"itar,omitempty"`
	ExportLicenseRequired string `json:"export_license_required,omitempty"`
	TDRAApprovalRequired  string `json:"tdra_approval_required,omitempty"`
	ImportPermitRequired  string `json:"import_permit_required,omitempty"`
	ComplianceNotes       string `json:"compliance_notes,omitempty"`
}

// Kind implements ExtraInfo.
func (ComplianceNotes) Kind() string { return "compliance" }

// SyncProvenance marks rows inserted from the brand catalog.
type SyncProvenance struct {
	Source string `json:"source"`
}

// Kind implements ExtraInfo.
func (SyncProvenance) Kind() string { return "provenance" }

// ProductMapSyncSource is the provenance written by the product-map sync.
const ProductMapSyncSource = "product map sync"

// EmptyExtras is the empty object {} written by the PDF importer.
type EmptyExtras struct{}

// Kind implements ExtraInfo.
func (EmptyExtras) Kind() string { return "empty" }

// RawExtras is stored text that could not be parsed as a JSON object. Older
// writers emitted bare NaN values, for instance. It is preserved as-is.
type RawExtras string

// Kind implements ExtraInfo.
func (RawExtras) Kind() string { return "raw" }

// MarshalJSON renders the raw text as a JSON string.
func (r RawExtras) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r))
}

var (
	tariffLineKeys = keySet("indent", "unit_of_quantity", "special_rate_of_duty",
		"column_2_rate_of_duty", "quota_quantity", "additional_duties")
	complianceKeys = keySet("eccn", "itar", "export_license_required",
		"tdra_approval_required", "import_permit_required", "compliance_notes")
)

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

func allKeysIn(fields map[string]json.RawMessage, set map[string]bool) bool {
	for k := range fields {
		if !set[k] {
			return false
		}
	}
	return true
}

// hasExactKeys reports whether fields carries every key of set and no other.
func hasExactKeys(fields map[string]json.RawMessage, set map[string]bool) bool {
	return len(fields) == len(set) && allKeysIn(fields, set)
}

// reencodesKeys reports whether encoding e produces the same key set as fields.
func reencodesKeys(e ExtraInfo, fields map[string]json.RawMessage) bool {
	data, err := json.Marshal(e)
	if err != nil {
		return false
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return false
	}
	return len(out) == len(fields) && allKeysIn(out, keysOf(fields))
}

func keysOf(fields map[string]json.RawMessage) map[string]bool {
	m := make(map[string]bool, len(fields))
	for k := range fields {
		m[k] = true
	}
	return m
}

// EncodeExtraInfo converts an ExtraInfo to its column value.
func EncodeExtraInfo(e ExtraInfo) (sql.NullString, error) {
	if e == nil {
		return sql.NullString{}, nil
	}
	if raw, ok := e.(RawExtras); ok {
		return sql.NullString{String: string(raw), Valid: true}, nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode %s extra_info: %w", e.Kind(), err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// DecodeExtraInfo converts a column value to an ExtraInfo. NULL decodes to nil.
// A typed variant is only chosen when encoding it again writes the stored key
// set; anything else stays a verbatim ScheduleExtras.
func DecodeExtraInfo(ns sql.NullString) (ExtraInfo, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(ns.String), &fields); err != nil || fields == nil {
		return RawExtras(ns.String), nil
	}

	switch {
	case len(fields) == 0:
		return EmptyExtras{}, nil

	case len(fields) == 1 && fields["source"] != nil:
		var p SyncProvenance
		if err := json.Unmarshal([]byte(ns.String), &p); err == nil {
			return p, nil
		}

	case hasExactKeys(fields, tariffLineKeys):
		var t TariffLineExtras
		if err := json.Unmarshal([]byte(ns.String), &t); err == nil {
			return t, nil
		}

	case allKeysIn(fields, complianceKeys):
		var c ComplianceNotes
		if err := json.Unmarshal([]byte(ns.String), &c); err == nil && reencodesKeys(c, fields) {
			return c, nil
		}
	}

	return ScheduleExtras(fields), nil
}

// ExtraInfoString renders an ExtraInfo for console output. nil renders as "null".
func ExtraInfoString(e ExtraInfo) string {
	ns, err := EncodeExtraInfo(e)
	if err != nil || !ns.Valid {
		return "null"
	}
	return ns.String
}
