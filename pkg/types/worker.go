package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind tags the worker variant. The set is closed.
type Kind string

// Worker variants.
const (
	KindHourly   Kind = "HourlyWorker"
	KindSalaried Kind = "SalariedWorker"
)

// Profile carries the base fields shared by every worker variant.
type Profile struct {
	Name     string
	Age      int
	Gender   string
	Position string
	Salary   decimal.Decimal // base compensation
}

// Worker is a worker record. Base fields are shared; the variant payload is
// selected by kind. All fields are private and change only through the
// validated setters.
type Worker struct {
	kind     Kind
	name     string
	age      int
	gender   string
	position string
	salary   decimal.Decimal

	hourly   hourlyTerms   // valid when kind == KindHourly
	salaried salariedTerms // valid when kind == KindSalaried
}

type hourlyTerms struct {
	rate  decimal.Decimal
	hours decimal.Decimal
}

type salariedTerms struct {
	bonus decimal.Decimal
}

// NewHourlyWorker constructs an hourly worker. Values are stored as given;
// validation applies to later setter calls.
func NewHourlyWorker(p Profile, rate, hours decimal.Decimal) *Worker {
	w := newWorker(KindHourly, p)
	w.hourly = hourlyTerms{rate: rate, hours: hours}
	return w
}

// NewSalariedWorker constructs a salaried worker. Values are stored as given;
// validation applies to later setter calls.
func NewSalariedWorker(p Profile, bonus decimal.Decimal) *Worker {
	w := newWorker(KindSalaried, p)
	w.salaried = salariedTerms{bonus: bonus}
	return w
}

func newWorker(k Kind, p Profile) *Worker {
	return &Worker{
		kind:     k,
		name:     p.Name,
		age:      p.Age,
		gender:   p.Gender,
		position: p.Position,
		salary:   p.Salary,
	}
}

// Kind returns the worker variant.
func (w *Worker) Kind() Kind { return w.kind }

// Name returns the worker's name.
func (w *Worker) Name() string { return w.name }

// Age returns the age in years.
func (w *Worker) Age() int { return w.age }

// Gender returns the recorded gender.
func (w *Worker) Gender() string { return w.gender }

// Position returns the job title.
func (w *Worker) Position() string { return w.position }

// Salary returns the base salary.
func (w *Worker) Salary() decimal.Decimal { return w.salary }

// HourlyRate returns the hourly rate, or zero for salaried workers.
func (w *Worker) HourlyRate() decimal.Decimal { return w.hourly.rate }

// HoursWorked returns the hours worked, or zero for salaried workers.
func (w *Worker) HoursWorked() decimal.Decimal { return w.hourly.hours }

// MonthlyBonus returns the monthly bonus, or zero for hourly workers.
func (w *Worker) MonthlyBonus() decimal.Decimal { return w.salaried.bonus }

// SetName sets the trimmed, title-cased name. Rejects blank names.
func (w *Worker) SetName(v string) error {
	n := NormalizeText(v)
	if n == "" {
		return &ValidationWarning{Field: LabelName, Value: v, Reason: "must not be empty"}
	}
	w.name = n
	return nil
}

// SetAge rejects ages that are not positive.
func (w *Worker) SetAge(v int) error {
	if v <= 0 {
		return &ValidationWarning{Field: LabelAge, Value: strconv.Itoa(v), Reason: "must be positive"}
	}
	w.age = v
	return nil
}

// SetGender sets the trimmed, title-cased gender. Rejects blank values.
func (w *Worker) SetGender(v string) error {
	n := NormalizeText(v)
	if n == "" {
		return &ValidationWarning{Field: LabelGender, Value: v, Reason: "must not be empty"}
	}
	w.gender = n
	return nil
}

// SetPosition sets the trimmed, title-cased position. Rejects blank values.
func (w *Worker) SetPosition(v string) error {
	n := NormalizeText(v)
	if n == "" {
		return &ValidationWarning{Field: LabelPosition, Value: v, Reason: "must not be empty"}
	}
	w.position = n
	return nil
}

// SetSalary rejects amounts that are not positive.
func (w *Worker) SetSalary(v decimal.Decimal) error {
	if !v.IsPositive() {
		return &ValidationWarning{Field: LabelSalary, Value: v.String(), Reason: "must be positive"}
	}
	w.salary = v
	return nil
}

// SetHourlyRate applies to hourly workers only and rejects rates that are not
// positive.
func (w *Worker) SetHourlyRate(v decimal.Decimal) error {
	if err := w.requireKind(KindHourly, LabelHourlyRate); err != nil {
		return err
	}
	if !v.IsPositive() {
		return &ValidationWarning{Field: LabelHourlyRate, Value: v.String(), Reason: "must be positive"}
	}
	w.hourly.rate = v
	return nil
}

// SetHoursWorked applies to hourly workers only and rejects negative hours.
func (w *Worker) SetHoursWorked(v decimal.Decimal) error {
	if err := w.requireKind(KindHourly, LabelHoursWorked); err != nil {
		return err
	}
	if v.IsNegative() {
		return &ValidationWarning{Field: LabelHoursWorked, Value: v.String(), Reason: "must not be negative"}
	}
	w.hourly.hours = v
	return nil
}

// SetMonthlyBonus applies to salaried workers only and rejects negative
// bonuses.
func (w *Worker) SetMonthlyBonus(v decimal.Decimal) error {
	if err := w.requireKind(KindSalaried, LabelMonthlyBonus); err != nil {
		return err
	}
	if v.IsNegative() {
		return &ValidationWarning{Field: LabelMonthlyBonus, Value: v.String(), Reason: "must not be negative"}
	}
	w.salaried.bonus = v
	return nil
}

func (w *Worker) requireKind(k Kind, label string) error {
	if w.kind != k {
		return &ValidationWarning{Field: label, Reason: fmt.Sprintf("not applicable to %s", w.kind)}
	}
	return nil
}

// SetField parses raw text for the labelled field and applies its setter.
// Age is parsed as an integer; amounts and hours as decimals. Parse failures,
// unknown labels and the read-only Type label return a ValidationWarning.
func (w *Worker) SetField(label, raw string) error {
	raw = strings.TrimSpace(raw)
	switch label {
	case LabelType:
		return &ValidationWarning{Field: label, Value: raw, Reason: ErrReadOnly.Error(), Err: ErrReadOnly}
	case LabelName:
		return w.SetName(raw)
	case LabelGender:
		return w.SetGender(raw)
	case LabelPosition:
		return w.SetPosition(raw)
	case LabelAge:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return &ValidationWarning{Field: label, Value: raw, Reason: "not an integer"}
		}
		return w.SetAge(n)
	case LabelSalary, LabelHourlyRate, LabelHoursWorked, LabelMonthlyBonus:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return &ValidationWarning{Field: label, Value: raw, Reason: "not a number"}
		}
		switch label {
		case LabelSalary:
			return w.SetSalary(d)
		case LabelHourlyRate:
			return w.SetHourlyRate(d)
		case LabelHoursWorked:
			return w.SetHoursWorked(d)
		default:
			return w.SetMonthlyBonus(d)
		}
	default:
		return &ValidationWarning{Field: label, Value: raw, Reason: ErrUnknownField.Error(), Err: ErrUnknownField}
	}
}

// FieldMap returns the worker's labelled fields: Type first, then the base
// fields, then the variant fields.
func (w *Worker) FieldMap() FieldMap {
	m := FieldMap{
		{LabelType, string(w.kind)},
		{LabelName, w.name},
		{LabelAge, w.age},
		{LabelGender, w.gender},
		{LabelPosition, w.position},
		{LabelSalary, w.salary},
	}
	switch w.kind {
	case KindHourly:
		m = append(m,
			Field{LabelHourlyRate, w.hourly.rate},
			Field{LabelHoursWorked, w.hourly.hours},
		)
	case KindSalaried:
		m = append(m, Field{LabelMonthlyBonus, w.salaried.bonus})
	}
	return m
}

// WorkerFromFieldMap rebuilds a worker from its field map. Every label the
// variant defines must be present with a value of the right type, and no
// other labels are allowed. Errors wrap ErrCorruptData.
func WorkerFromFieldMap(m FieldMap) (*Worker, error) {
	typ, err := textValue(m, LabelType)
	if err != nil {
		return nil, err
	}
	kind := Kind(typ)
	var want int
	switch kind {
	case KindHourly:
		want = 8
	case KindSalaried:
		want = 7
	default:
		return nil, fmt.Errorf("%w: %w %q", ErrCorruptData, ErrUnknownKind, typ)
	}
	if len(m) != want {
		return nil, fmt.Errorf("%w: %s has %d fields, want %d", ErrCorruptData, kind, len(m), want)
	}

	var p Profile
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	p.Name, err = textValue(m, LabelName)
	collect(err)
	p.Gender, err = textValue(m, LabelGender)
	collect(err)
	p.Position, err = textValue(m, LabelPosition)
	collect(err)
	p.Age, err = intValue(m, LabelAge)
	collect(err)
	p.Salary, err = decimalValue(m, LabelSalary)
	collect(err)

	var w *Worker
	switch kind {
	case KindHourly:
		rate, err := decimalValue(m, LabelHourlyRate)
		collect(err)
		hours, err := decimalValue(m, LabelHoursWorked)
		collect(err)
		w = NewHourlyWorker(p, rate, hours)
	case KindSalaried:
		bonus, err := decimalValue(m, LabelMonthlyBonus)
		collect(err)
		w = NewSalariedWorker(p, bonus)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return w, nil
}

func textValue(m FieldMap, label string) (string, error) {
	v, ok := m.Get(label)
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrCorruptData, label)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, want string", ErrCorruptData, label, v)
	}
	return s, nil
}

func intValue(m FieldMap, label string) (int, error) {
	v, ok := m.Get(label)
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrCorruptData, label)
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case json.Number:
		n, err := strconv.Atoi(x.String())
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer: %s", ErrCorruptData, label, x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %q is %T, want integer", ErrCorruptData, label, v)
	}
}

func decimalValue(m FieldMap, label string) (decimal.Decimal, error) {
	v, ok := m.Get(label)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: missing %q", ErrCorruptData, label)
	}
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q is not a number: %s", ErrCorruptData, label, x)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q is %T, want number", ErrCorruptData, label, v)
	}
}

// NormalizeText trims surrounding space and title-cases each word.
func NormalizeText(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// WorkerInput carries every field needed to create a worker of either kind.
// Fields that do not apply to the chosen kind are ignored.
type WorkerInput struct {
	Profile
	HourlyRate   decimal.Decimal
	HoursWorked  decimal.Decimal
	MonthlyBonus decimal.Decimal
}

// Validate applies the setter rules of kind k to every field and returns all
// violations joined, or nil. The input itself is not modified.
func (in WorkerInput) Validate(k Kind) error {
	if k != KindHourly && k != KindSalaried {
		return fmt.Errorf("%w %q", ErrUnknownKind, k)
	}
	scratch := &Worker{kind: k}
	errs := []error{
		scratch.SetName(in.Name),
		scratch.SetAge(in.Age),
		scratch.SetGender(in.Gender),
		scratch.SetPosition(in.Position),
		scratch.SetSalary(in.Salary),
	}
	switch k {
	case KindHourly:
		errs = append(errs, scratch.SetHourlyRate(in.HourlyRate), scratch.SetHoursWorked(in.HoursWorked))
	case KindSalaried:
		errs = append(errs, scratch.SetMonthlyBonus(in.MonthlyBonus))
	}
	return errors.Join(errs...)
}

// Build constructs a worker of kind k with text fields normalized. No
// validation is performed.
func (in WorkerInput) Build(k Kind) (*Worker, error) {
	p := in.Profile
	p.Name = NormalizeText(p.Name)
	p.Gender = NormalizeText(p.Gender)
	p.Position = NormalizeText(p.Position)
	switch k {
	case KindHourly:
		return NewHourlyWorker(p, in.HourlyRate, in.HoursWorked), nil
	case KindSalaried:
		return NewSalariedWorker(p, in.MonthlyBonus), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, k)
	}
}
