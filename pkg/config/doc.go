/*
Package config defines the tunable sizing constants of the runtime
(mailbox/ingress/topic-table capacities, timer periods, heartbeat
threshold) as a Config struct with sensible built-in defaults,
loadable from YAML so a deployment can override defaults without a
rebuild.
*/
package config
