// Package policy holds the static mode policy of the platform.
//
// A policy entry describes what one application needs when it enters a named
// mode: a priority per device resource (0 = not needed), whether a display
// grant is a full takeover, whether the grant stacks on top of the previous
// owner instead of replacing it, whether its audio may mix with other audio,
// and an optional mutual-exclusion group.
//
// The table is populated once at startup from a policy file and never changes
// afterwards. Lookups are exact on (mode, app).
//
// Policy files may be written as XML (the format shipped on target images),
// YAML, TOML or JSON:
//
//	<policies>
//	  <mode name="home"  app="0" display="1"/>
//	  <mode name="radio" app="2" audio="2" tuner="1"/>
//	  <mode name="video" app="3" audio="3" display="3" full="1" resume="1"/>
//	</policies>
//
//	policies:
//	  - {name: home, app: 0, display: 1}
//	  - {name: radio, app: 2, audio: 2, tuner: 1}
package policy
