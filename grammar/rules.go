package grammar

import "regexp"

// the empty scalar is indexed under the zero byte.
const emptyFirst = "\x00"

var yaml11 = []Rule{
	{
		Tag: BoolTag,
		Regexp: regexp.MustCompile(`^(?:yes|Yes|YES|no|No|NO` +
			`|true|True|TRUE|false|False|FALSE` +
			`|on|On|ON|off|Off|OFF)$`),
		First: "yYnNtTfFoO",
	},
	{
		Tag: FloatTag,
		Regexp: regexp.MustCompile(`^(?:[-+]?(?:[0-9][0-9_]*)\.[0-9_]*(?:[eE][-+][0-9]+)?` +
			`|\.[0-9_]+(?:[eE][-+][0-9]+)?` +
			`|[-+]?[0-9][0-9_]*(?::[0-5]?[0-9])+\.[0-9_]*` +
			`|[-+]?\.(?:inf|Inf|INF)` +
			`|\.(?:nan|NaN|NAN))$`),
		First: "-+0123456789.",
	},
	{
		Tag: IntTag,
		Regexp: regexp.MustCompile(`^(?:[-+]?0b[0-1_]+` +
			`|[-+]?0[0-7_]+` +
			`|[-+]?(?:0|[1-9][0-9_]*)` +
			`|[-+]?0x[0-9a-fA-F_]+` +
			`|[-+]?[1-9][0-9_]*(?::[0-5]?[0-9])+)$`),
		First: "-+0123456789",
	},
	{
		Tag: NullTag,
		Regexp: regexp.MustCompile(`^(?:~` +
			`|null|Null|NULL` +
			`|)$`),
		First: "~nN" + emptyFirst,
	},
	{
		Tag: TimestampTag,
		Regexp: regexp.MustCompile(`^(?:[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]` +
			`|[0-9][0-9][0-9][0-9]-[0-9][0-9]?-[0-9][0-9]?` +
			`(?:[Tt]|[ \t]+)[0-9][0-9]?` +
			`:[0-9][0-9]:[0-9][0-9](?:\.[0-9]*)?` +
			`(?:[ \t]*(?:Z|[-+][0-9][0-9]?(?::[0-9][0-9])?))?)$`),
		First: "0123456789",
	},
	{
		Tag:    ValueTag,
		Regexp: regexp.MustCompile(`^(?:=)$`),
		First:  "=",
	},
}

var yaml12 = []Rule{
	{
		Tag:    BoolTag,
		Regexp: regexp.MustCompile(`^(?:true|True|TRUE|false|False|FALSE)$`),
		First:  "tTfF",
	},
	{
		Tag:    IntTag,
		Regexp: regexp.MustCompile(`^(?:0o[0-7]+|[-+]?[0-9]+|0x[0-9a-fA-F]+)$`),
		First:  "-+0123456789",
	},
	{
		Tag:    FloatTag,
		Regexp: regexp.MustCompile(`^[-+]?(?:\.[0-9]+|[0-9]+(?:\.[0-9]*)?)(?:[eE][-+]?[0-9]+)?$`),
		First:  "-+0123456789.",
	},
	{
		Tag: NullTag,
		Regexp: regexp.MustCompile(`^(?:~` +
			`|null|Null|NULL` +
			`|)$`),
		First: "~nN" + emptyFirst,
	},
}

var mergeRule = Rule{
	Tag:    MergeTag,
	Regexp: regexp.MustCompile(`^(?:<<)$`),
	First:  "<",
}
