package db

const lockActiveTokensQ = `
SELECT id
FROM refresh_tokens
WHERE user_id = $1 AND active = true
ORDER BY created_at ASC, id ASC
FOR UPDATE
`

const evictOldestTokensQ = `
UPDATE refresh_tokens
SET active = false
WHERE id IN (
	SELECT id
	FROM refresh_tokens
	WHERE user_id = $1 AND active = true
	ORDER BY created_at ASC, id ASC
	LIMIT $2
)
`

const insertTokenQ = `
INSERT INTO refresh_tokens (token, user_id, created_at, expires_at, active, device_info, ip)
VALUES ($1, $2, $3, $4, true, $5, $6)
RETURNING id
`

const getActiveTokenQ = `
SELECT id, token, user_id, created_at, expires_at, active, device_info, ip
FROM refresh_tokens
WHERE token = $1 AND active = true
`

const deactivateTokenQ = `
UPDATE refresh_tokens
SET active = false
WHERE token = $1 AND active = true
`

const deactivateAllTokensQ = `
UPDATE refresh_tokens
SET active = false
WHERE user_id = $1 AND active = true
`

const listActiveSessionsQ = `
SELECT
	t.id,
	t.device_info,
	t.ip,
	t.created_at,
	t.expires_at,
	u.name AS user_name,
	u.email AS user_email,
	u.avatar AS user_avatar
FROM refresh_tokens t
JOIN users u ON u.id = t.user_id
WHERE t.user_id = $1 AND t.active = true AND t.expires_at > $2
ORDER BY t.created_at DESC
`

const deleteDeadTokensQ = `
DELETE FROM refresh_tokens
WHERE expires_at < $1 OR active = false
`
