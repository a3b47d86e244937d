// Package password implements Argon2id password hashing for Gate.
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<hash_b64>
//
// Verification performs strict PHC decoding and refuses hashes whose cost
// parameters exceed the configured maxima (anti-DoS boundary).
package password
