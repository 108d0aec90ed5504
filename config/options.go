package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	flags "github.com/jessevdk/go-flags"
	"github.com/logingood/check-snmp-state/check"
	"github.com/logingood/check-snmp-state/models"
	"github.com/logingood/check-snmp-state/snmp"
)

const (
	EngineNetSNMP = "netsnmp"
	EngineGoSNMP  = "gosnmp"

	defaultCommunity = "public"
	autoMin          = check.AutoMinResults
)

var validate = validator.New()

// ErrHelp is returned by Parse when usage was requested.
var ErrHelp = errors.New("help requested")

// UsageError is a bad or contradictory command line. It is reported before
// any SNMP traffic.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

func usagef(format string, a ...interface{}) error {
	return &UsageError{Msg: fmt.Sprintf(format, a...)}
}

type Options struct {
	Hostname  string `short:"H" long:"hostname" description:"host to query" required:"true" validate:"required,hostname_rfc1123|ip"`
	Port      int    `short:"p" long:"port" description:"SNMP port" default:"161" validate:"min=1,max=65535"`
	Protocol  string `short:"P" long:"protocol" description:"SNMP protocol version" choice:"1" choice:"2c" choice:"3" default:"2c"`
	Community string `short:"C" long:"community" description:"SNMP community string (default: public)"`

	SecName   string `short:"U" long:"secname" description:"SNMPv3 user name"`
	SecLevel  string `short:"L" long:"seclevel" description:"SNMPv3 security level" validate:"omitempty,oneof=noAuthNoPriv authNoPriv authPriv"`
	AuthProto string `short:"a" long:"authproto" description:"SNMPv3 auth protocol" validate:"omitempty,oneof=MD5 SHA SHA-224 SHA-256 SHA-384 SHA-512"`
	AuthPass  string `short:"A" long:"authpasswd" description:"SNMPv3 auth passphrase"`
	PrivProto string `short:"x" long:"privproto" description:"SNMPv3 privacy protocol" validate:"omitempty,oneof=DES AES AES-128 AES-192 AES-256"`
	PrivPass  string `short:"X" long:"privpasswd" description:"SNMPv3 privacy passphrase"`

	OIDs      []string `short:"o" long:"oid" description:"OID to query, or the base to walk or expand entities under" required:"true" validate:"min=1,dive,required"`
	Entities  []string `short:"e" long:"entity" description:"entity name from ENTITY-MIB::entPhysicalDescr, appended as index to each OID"`
	Critical  []string `short:"c" long:"critical" description:"value meaning CRITICAL"`
	Warning   []string `short:"w" long:"warning" description:"value meaning WARNING"`
	OK        []string `short:"k" long:"ok" description:"value meaning OK"`
	Delimiter string   `short:"d" long:"delimiter" description:"split multi-value arguments on this string"`

	Walk bool `long:"walk" description:"walk the OIDs instead of getting them"`
	Bulk bool `long:"bulk" description:"walk with GETBULK (implies --walk)"`
	Next bool `long:"next" description:"get the next OID after each given one"`
	Min  int  `short:"m" long:"min" description:"minimum number of results for --walk and --next (default: 1 for walks, the number of OIDs for --next)" default:"-1"`

	Timeout float64 `short:"t" long:"timeout" description:"seconds to wait for each response" default:"5" validate:"gt=0"`
	Retries int     `short:"r" long:"retries" description:"number of retries" default:"1" validate:"gte=0"`

	Engine   string `long:"engine" description:"query engine" choice:"netsnmp" choice:"gosnmp" default:"netsnmp"`
	CacheDir string `long:"cache-dir" description:"directory for entity caches (default: $CACHE_DIR)"`
	Verbose  []bool `short:"v" long:"verbose" description:"verbose logging on stderr, repeat for more"`
}

// Parse reads args into Options. It does not validate them.
func Parse(args []string) (*Options, *flags.Parser, error) {
	var opts Options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Usage = "-H host -o OID [-e entity] [-c value] [-w value] [-k value] [OPTIONS]"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, parser, ErrHelp
		}
		return nil, parser, &UsageError{Msg: err.Error()}
	}
	if len(rest) > 0 {
		return nil, parser, usagef("unexpected arguments: %s", strings.Join(rest, " "))
	}
	return &opts, parser, nil
}

// NeedsCredentials reports whether the command line left access details
// for an inventory lookup to fill in.
func (o *Options) NeedsCredentials() bool {
	return o.Community == "" && o.SecName == ""
}

// ApplyCredentials fills access details from an inventory record. It only
// touches fields the command line left empty, plus version and port, which
// always follow the record it came from.
func (o *Options) ApplyCredentials(c models.Credentials) {
	if !o.NeedsCredentials() {
		return
	}
	if c.Version != "" {
		o.Protocol = c.Version
	}
	if c.Port != 0 {
		o.Port = c.Port
	}
	o.Community = c.Community
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&o.SecName, c.SecName)
	fill(&o.SecLevel, c.SecLevel)
	fill(&o.AuthProto, strings.ToUpper(c.AuthProto))
	fill(&o.AuthPass, c.AuthPass)
	fill(&o.PrivProto, strings.ToUpper(c.PrivProto))
	fill(&o.PrivPass, c.PrivPass)
}

// Normalize applies delimiter splitting and defaults that depend on other
// options. Call it once, after ApplyCredentials.
func (o *Options) Normalize() {
	o.OIDs = o.split(o.OIDs)
	o.Entities = o.split(o.Entities)
	o.Critical = o.split(o.Critical)
	o.Warning = o.split(o.Warning)
	o.OK = o.split(o.OK)

	if o.Bulk {
		o.Walk = true
	}
	if o.Protocol != "3" && o.Community == "" {
		o.Community = defaultCommunity
	}
	if o.Protocol == "3" && o.SecLevel == "" {
		switch {
		case o.PrivPass != "":
			o.SecLevel = "authPriv"
		case o.AuthPass != "":
			o.SecLevel = "authNoPriv"
		default:
			o.SecLevel = "noAuthNoPriv"
		}
	}
	o.AuthProto = strings.ToUpper(o.AuthProto)
	o.PrivProto = strings.ToUpper(o.PrivProto)
	if o.SecLevel != "" && o.SecLevel != "noAuthNoPriv" && o.AuthProto == "" {
		o.AuthProto = "MD5"
	}
	if o.SecLevel == "authPriv" && o.PrivProto == "" {
		o.PrivProto = "DES"
	}
}

func (o *Options) split(values []string) []string {
	if o.Delimiter == "" {
		return values
	}
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, o.Delimiter) {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks field constraints and the combinations go-flags cannot
// express. Every failure is a *UsageError.
func (o *Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &UsageError{Msg: formatValidationErrors(verrs)}
		}
		return &UsageError{Msg: err.Error()}
	}

	for _, oid := range o.OIDs {
		if !snmp.IsOID(oid) {
			return usagef("%q is not an OID", oid)
		}
	}
	switch {
	case o.Next && o.Walk:
		return usagef("--next cannot be combined with --walk or --bulk")
	case o.Bulk && o.Protocol == "1":
		return usagef("--bulk needs SNMP v2c or v3")
	case o.Min != autoMin && !o.Walk && !o.Next:
		return usagef("--min only applies to --walk and --next")
	case o.Min < 0 && o.Min != autoMin:
		return usagef("--min must not be negative")
	case len(o.Critical)+len(o.Warning)+len(o.OK) == 0:
		return usagef("at least one of --critical, --warning or --ok is required")
	case !o.allNumeric() && o.anyNumeric():
		return usagef("OIDs must be either all numeric or all symbolic")
	case o.Engine == EngineGoSNMP && !o.allNumeric():
		return usagef("the %s engine only accepts numeric OIDs", EngineGoSNMP)
	}

	if o.Protocol == "3" {
		switch {
		case o.SecName == "":
			return usagef("SNMPv3 needs --secname")
		case o.SecLevel != "noAuthNoPriv" && o.AuthPass == "":
			return usagef("security level %s needs --authpasswd", o.SecLevel)
		case o.SecLevel == "authPriv" && o.PrivPass == "":
			return usagef("security level %s needs --privpasswd", o.SecLevel)
		}
	}
	return nil
}

func (o *Options) allNumeric() bool {
	for _, oid := range o.OIDs {
		if !snmp.IsNumericOID(oid) {
			return false
		}
	}
	return true
}

func (o *Options) anyNumeric() bool {
	for _, oid := range o.OIDs {
		if snmp.IsNumericOID(oid) {
			return true
		}
	}
	return false
}

func formatValidationErrors(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", field, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("invalid %s %q", field, fmt.Sprint(e.Value())))
		}
	}
	return strings.Join(msgs, "; ")
}

// Operation maps the mode flags to the query to run.
func (o *Options) Operation() snmp.Operation {
	switch {
	case o.Next:
		return snmp.OpGetNext
	case o.Bulk:
		return snmp.OpBulkWalk
	case o.Walk:
		return snmp.OpWalk
	default:
		return snmp.OpGet
	}
}

// EntityOperation is how the entity table is walked on a cold cache.
func (o *Options) EntityOperation() snmp.Operation {
	if o.Protocol == "1" {
		return snmp.OpWalk
	}
	return snmp.OpBulkWalk
}

func (o *Options) Target() snmp.Target {
	return snmp.Target{
		Host:      o.Hostname,
		Port:      o.Port,
		Version:   o.Protocol,
		Community: o.Community,
		SecLevel:  o.SecLevel,
		SecName:   o.SecName,
		AuthProto: o.AuthProto,
		AuthPass:  o.AuthPass,
		PrivProto: o.PrivProto,
		PrivPass:  o.PrivPass,
		Timeout:   time.Duration(o.Timeout * float64(time.Second)),
		Retries:   o.Retries,
	}
}

func (o *Options) Settings() check.Settings {
	return check.Settings{
		Op:       o.Operation(),
		OIDs:     o.OIDs,
		Entities: o.Entities,
		Rules: check.RuleSet{
			Critical: o.Critical,
			Warning:  o.Warning,
			OK:       o.OK,
		},
		MinResults: o.Min,
	}
}

// LogLevel raises base by one step per -v: info, then debug.
func (o *Options) LogLevel(base string) string {
	switch {
	case len(o.Verbose) >= 2:
		return "DEBUG"
	case len(o.Verbose) == 1 && !strings.EqualFold(base, "DEBUG"):
		return "INFO"
	default:
		return base
	}
}
