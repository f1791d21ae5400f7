package offline

const MaxBodyBytes = maxBodyBytes
