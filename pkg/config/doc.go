/*
Package config loads patch specs for patchrc.

	           +---------------+
	           | PatchrcConfig |
	           |  (one file)   |
	           +-------+-------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   JSON   | |   HCL    |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Keeps the replacement policy (which strings change) as data
- Picks the parser from the file extension
- Rejects unknown fields so typos fail loudly
- Resolves the target file relative to the config file

📝 YAML:

	file: src/components/Foo.tsx
	encoding: utf-8
	atomic: true
	replacements:
	  - search: "a\\nb"
	    replace: "a\nb"
	  - search: "}\\\n}"
	    replace: "}\n}"
	    optional: true
	    mode: first

📝 HCL:

	file = "src/components/Foo.tsx"

	replacement {
	  search  = "a\\nb"
	  replace = "a\nb"
	}

🔍 Example:

	cfg, err := config.LoadConfig(ctx, ".patchrc.yaml")
	if err != nil {
		return err
	}
	spec, err := cfg.Spec("")
*/
package config
