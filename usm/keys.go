package usm

// Key derivation per RFC 3414 §2.6: a password is stretched
// to 1 MiB, digested once to get Ku, then localized to a specific engine
// by digesting Ku || engineID || Ku. Privacy keys longer than the digest
// (AES192/256 under MD5 or SHA1, AES256 under SHA224) are extended by
// successive digesting of the previous block.

const passwordStretchLength = 1048576

// passwordToKey implements the "password to key" transform (Ku).
func passwordToKey(password string, proto AuthProtocol) ([]byte, error) {
	if password == "" {
		return nil, newErr(ErrMissingAuthPassword, "")
	}
	info, err := proto.info()
	if err != nil {
		return nil, err
	}

	h := info.newHash()
	pwBytes := []byte(password)
	remaining := passwordStretchLength
	buf := make([]byte, 64)
	pos := 0
	for remaining > 0 {
		n := len(buf)
		if n > remaining {
			n = remaining
		}
		for i := 0; i < n; i++ {
			buf[i] = pwBytes[pos%len(pwBytes)]
			pos++
		}
		h.Write(buf[:n]) //nolint:errcheck
		remaining -= n
	}
	return h.Sum(nil), nil
}

// localizeKey implements the "password to key, localized" transform:
// Hash(Ku || engineID || Ku).
func localizeKey(ku, engineID []byte, proto AuthProtocol) ([]byte, error) {
	info, err := proto.info()
	if err != nil {
		return nil, err
	}
	h := info.newHash()
	h.Write(ku)       //nolint:errcheck
	h.Write(engineID) //nolint:errcheck
	h.Write(ku)        //nolint:errcheck
	return h.Sum(nil), nil
}

// LocalizedAuthKey derives the localized authentication key for password,
// scoped to engineID, per RFC 3414 §2.6.
func LocalizedAuthKey(password string, engineID []byte, proto AuthProtocol) ([]byte, error) {
	ku, err := passwordToKey(password, proto)
	if err != nil {
		return nil, err
	}
	return localizeKey(ku, engineID, proto)
}

// LocalizedPrivKey derives the localized privacy key for password, scoped
// to engineID, extended to privProto's required key length if the auth
// digest is shorter than that.
func LocalizedPrivKey(password string, engineID []byte, authProto AuthProtocol, privProto PrivProtocol) ([]byte, error) {
	localized, err := LocalizedAuthKey(password, engineID, authProto)
	if err != nil {
		return nil, err
	}

	want, ok := privInfo[privProto]
	if !ok {
		return nil, newErr(ErrUnsupportedProtocol, "unknown privacy protocol")
	}

	if len(localized) >= want.keyLen {
		return localized[:want.keyLen], nil
	}
	return extendKey(localized, authProto, want.keyLen)
}

// extendKey grows key to length by repeated digesting of the last-produced
// block, per RFC 3414's "successive digests of the previous localized
// key" rule.
func extendKey(key []byte, proto AuthProtocol, length int) ([]byte, error) {
	info, err := proto.info()
	if err != nil {
		return nil, err
	}

	extended := append([]byte{}, key...)
	last := key
	for len(extended) < length {
		h := info.newHash()
		h.Write(last) //nolint:errcheck
		digest := h.Sum(nil)
		extended = append(extended, digest...)
		last = digest
	}
	return extended[:length], nil
}
