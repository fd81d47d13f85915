package db

const userGetByIDQ = `
SELECT
	u.id,
	u.name,
	u.email,
	u.avatar,
	u.is_active,
	u.is_locked,
	u.created_at,
	u.updated_at
FROM users u
WHERE u.id = $1
`

const userGetByEmailQ = `
SELECT
    u.id,
    u.name,
    u.email,
    u.password,
    u.avatar,
	u.is_active,
	u.is_locked,
    u.created_at,
    u.updated_at
FROM users u
WHERE email = $1
`

const userCreateQ = `
INSERT INTO users (name, password, email, avatar)
VALUES ($1, $2, $3, $4)
RETURNING id
`

const userUpdateQ = `
UPDATE users
SET name = $1,
    email = $2,
    avatar = $3,
	updated_at = NOW()
WHERE id = $4
`

const userDeleteQ = `
DELETE FROM users
WHERE id = $1
`
