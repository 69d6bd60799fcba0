package mrz

import "time"

// Document is the flat key-value form of a Record, the shape written to JSON
// responses, reports and events.
type Document struct {
	MRZType        string `json:"mrz_type"`
	Type           string `json:"type"`
	Country        string `json:"country"`
	Names          string `json:"names"`
	Surname        string `json:"surname"`
	DisplayName    string `json:"display_name"`
	Number         string `json:"number"`
	Nationality    string `json:"nationality"`
	DateOfBirth    string `json:"date_of_birth"`
	Sex            string `json:"sex"`
	Expiration     string `json:"expiration_date"`
	PersonalNumber string `json:"personal_number"`
	Optional1      string `json:"optional1"`
	Optional2      string `json:"optional2"`
	DateOfBirthISO string `json:"date_of_birth_iso"`
	ExpirationISO  string `json:"expiration_date_iso"`

	CheckNumber         string `json:"check_number"`
	CheckDateOfBirth    string `json:"check_date_of_birth"`
	CheckExpirationDate string `json:"check_expiration_date"`
	CheckComposite      string `json:"check_composite"`
	CheckPersonalNumber string `json:"check_personal_number"`

	ValidNumber         bool `json:"valid_number"`
	ValidDateOfBirth    bool `json:"valid_date_of_birth"`
	ValidExpirationDate bool `json:"valid_expiration_date"`
	ValidComposite      bool `json:"valid_composite"`
	ValidPersonalNumber bool `json:"valid_personal_number"`
	ValidScore          int  `json:"valid_score"`

	Method   string  `json:"method"`
	Walltime float64 `json:"walltime"`
	RawText  string  `json:"raw_text"`
}

// Meta carries diagnostics about how a record was obtained.
type Meta struct {
	// Method names the detection path, e.g. "text" or "tesseract".
	Method string
	// Walltime is how long detection and parsing took.
	Walltime time.Duration
	// ReferenceYear anchors century inference for dates. Zero means the
	// current year.
	ReferenceYear int
}

// NewDocument flattens r. Fields a layout does not carry are left empty and
// their validity flags false.
func NewDocument(r *Record, meta Meta) Document {
	year := meta.ReferenceYear
	if year == 0 {
		year = time.Now().Year()
	}

	d := Document{
		MRZType:        r.Type.String(),
		Type:           r.DocumentType,
		Country:        r.Country,
		Names:          r.Names,
		Surname:        r.Surname,
		DisplayName:    NormalizeName(r.Names, r.Surname),
		Number:         r.Number.Value,
		Nationality:    r.Nationality,
		DateOfBirth:    r.DateOfBirth.Value,
		Sex:            r.Sex,
		Expiration:     r.Expiration.Value,
		Optional1:      r.Optional1,
		Optional2:      r.Optional2,
		DateOfBirthISO: NormalizeDate(r.DateOfBirth.Value, year),
		ExpirationISO:  NormalizeDate(r.Expiration.Value, year),

		CheckNumber:         r.Number.CheckString(),
		CheckDateOfBirth:    r.DateOfBirth.CheckString(),
		CheckExpirationDate: r.Expiration.CheckString(),

		ValidNumber:         r.Number.Valid,
		ValidDateOfBirth:    r.DateOfBirth.Valid,
		ValidExpirationDate: r.Expiration.Valid,
		ValidScore:          r.ValidScore,

		Method:   meta.Method,
		Walltime: meta.Walltime.Seconds(),
		RawText:  r.RawText(),
	}

	if r.PersonalNumber != nil {
		d.PersonalNumber = r.PersonalNumber.Value
		d.CheckPersonalNumber = r.PersonalNumber.CheckString()
		d.ValidPersonalNumber = r.PersonalNumber.Valid
	}
	if r.Composite != nil {
		d.CheckComposite = r.Composite.CheckString()
		d.ValidComposite = r.Composite.Valid
	}
	return d
}
