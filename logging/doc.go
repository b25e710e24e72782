// Package logging builds the zap loggers used across the server.
//
// LOG_LEVEL selects the level and LOG_FORMAT selects json (production) or
// console (development) encoding. The mcp stdio command uses ForStdio so
// log lines never interleave with protocol frames on stdout.
package logging
